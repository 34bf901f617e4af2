// Package cli provides the stagehand command-line interface.
//
// Two commands cover the two halves of the container lifecycle:
// `stagehand build` performs the gated build sequence, and
// `stagehand run` restores the frozen environment and launches the
// application server.  Failure diagnostics are printed once, here, and
// converted into the process exit code.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yanizio/stagehand/internal/config"
	"github.com/yanizio/stagehand/internal/installer"
	"github.com/yanizio/stagehand/internal/launch"
	"github.com/yanizio/stagehand/internal/logger"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Global flags
var (
	noColor bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:           "stagehand",
	Short:         "One-shot bootstrap: validate build parameters, stage the app, launch its server",
	SilenceUsage:  true,
	SilenceErrors: true, // diagnostics are printed once, in Execute
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "only warnings and errors on the console")

	cobra.OnInitialize(func() {
		if noColor {
			color.NoColor = true
		}
	})
}

// Execute runs the CLI and returns the process exit code: 0 on success, a
// propagated external exit code where one exists, else 1.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	return 0
}

// exitCode propagates the external process's status when the failure was
// an installer or server exit; every local failure is 1.
func exitCode(err error) int {
	var exitErr *launch.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	var instErr *installer.InstallError
	if errors.As(err, &instErr) && instErr.ExitCode > 0 {
		return instErr.ExitCode
	}
	return 1
}

// setup loads configuration and installs the file logger.  Called at the
// top of every command's RunE.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.New(cfg.Paths.Root, runningInTTY(), quiet); err != nil {
		return nil, fmt.Errorf("start logger: %w", err)
	}
	return cfg, nil
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
