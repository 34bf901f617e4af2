// internal/launch/launcher.go
//
// Foreground launch of the external application server.
//
// Context
// -------
// The launcher starts the configured server entrypoint (default
// `python3 manage.py runserver`) with the fixed listen address appended,
// the frozen runtime environment layered over the inherited one, and
// stdio passed straight through.  The call blocks until the server exits;
// the container's lifetime is the process's lifetime.  No supervision,
// restart, or health-check logic exists at this layer, and a hung server
// hangs us with it.

package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yanizio/stagehand/internal/runtimeenv"
)

// ExitError reports a server process that terminated with a non-zero
// status.  Code is -1 when the process could not be started at all.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("server %q exited with status %d: %v", e.Command, e.Code, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Launcher starts the application server in the foreground.
type Launcher struct {
	Command string // server entrypoint, without the address
	Addr    string // fixed host:port appended as the final argument
	Dir     string // working directory (the run location)
}

// Run blocks until the server process exits.  A clean exit returns nil;
// anything else returns an *ExitError whose Code becomes the container's
// exit status.
func (l Launcher) Run(ctx context.Context, env runtimeenv.Env) error {
	full := l.Command + " " + l.Addr
	zap.S().Infow("launching server", "command", full, "dir", l.Dir)

	cmd := exec.CommandContext(ctx, "sh", "-c", full)
	cmd.Dir = l.Dir
	cmd.Env = append(os.Environ(), env.Environ()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		zap.S().Errorw("server exited", "command", full, "exit", code)
		return &ExitError{Command: full, Code: code, Err: err}
	}

	zap.S().Infow("server exited cleanly", "command", full)
	return nil
}
