// internal/installer/installer.go
//
// Opaque external dependency installation.
//
// Context
// -------
// The installer command (default `pip3 install -r requirements.txt`) is an
// external collaborator: Stagehand runs it in the run directory with
// inherited stdio and treats the result as all-or-nothing.  Whatever
// diagnostics the installer prints go straight to the operator; this layer
// performs no interpretation and no recovery, and a failed install aborts
// the whole build.
//
// The wait on the installer is an opaque, non-cancelable block from the
// procedure's point of view; ctx exists so the CLI can pass its lifetime
// context through, not to impose a timeout (there is none).

package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// InstallError reports a failed installer run.  ExitCode is -1 when the
// command could not be started at all.
type InstallError struct {
	Command  string
	ExitCode int
	Err      error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("dependency install %q failed (exit %d): %v", e.Command, e.ExitCode, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Installer runs the configured external package installer.
type Installer struct {
	Command string // full shell command line
	Dir     string // working directory (the run location)
}

// Run blocks until the installer exits.  A nil return means the installer
// reported success; any other outcome is an *InstallError.
func (i Installer) Run(ctx context.Context) error {
	zap.S().Infow("installing dependencies", "command", i.Command, "dir", i.Dir)

	cmd := exec.CommandContext(ctx, "sh", "-c", i.Command)
	cmd.Dir = i.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		zap.S().Errorw("dependency install failed", "command", i.Command, "exit", code)
		return &InstallError{Command: i.Command, ExitCode: code, Err: err}
	}

	zap.S().Infow("dependencies installed")
	return nil
}
