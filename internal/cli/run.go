// internal/cli/run.go
//
// `stagehand run` — the container-start half of the procedure.
//
// Restores the environment frozen by `build`, executes any enabled
// pre-launch steps, then blocks in the foreground server launch.  The
// command only returns when the server exits, and the server's status
// becomes the process exit code.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/yanizio/stagehand/internal/bootstrap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pre-launch steps and start the application server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		return bootstrap.New(cfg).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
