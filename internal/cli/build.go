// internal/cli/build.go
//
// `stagehand build` — the image-construction half of the procedure.
//
// Build arguments arrive as environment variables (`SECRET_KEY`,
// `ALLOWED_HOSTS`) or as flags; a changed flag wins.  Flags go through
// cobra's Changed check so an explicitly empty --allowed-hosts stays an
// empty override instead of falling back to the default.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/yanizio/stagehand/internal/bootstrap"
	"github.com/yanizio/stagehand/internal/config"
)

var (
	buildSecretKey    string
	buildAllowedHosts string
	buildSource       string
	buildRunDir       string
	buildThenRun      bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate parameters, install dependencies, and stage the application",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		f := cmd.Flags()
		if f.Changed("secret-key") {
			cfg.Build.SecretKey = buildSecretKey
		}
		if f.Changed("allowed-hosts") {
			cfg.Build.AllowedHosts = config.Some(buildAllowedHosts)
		}
		if f.Changed("source") {
			cfg.Payload.Source = buildSource
		}
		if f.Changed("run-dir") {
			cfg.Payload.RunDir = buildRunDir
		}

		proc := bootstrap.New(cfg)
		if buildThenRun {
			return proc.Execute(cmd.Context())
		}
		if err := proc.Build(cmd.Context()); err != nil {
			return err
		}

		successColor.Fprintln(cmd.OutOrStdout(), "build complete")
		infoColor.Fprintf(cmd.OutOrStdout(), "run dir: %s\n", cfg.Payload.RunDir)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildSecretKey, "secret-key", "",
		"required application secret (literal or vault:<path>#<key>)")
	buildCmd.Flags().StringVar(&buildAllowedHosts, "allowed-hosts", "",
		"comma-separated hosts the server accepts (default "+`"127.0.0.1,localhost"`+" when unset)")
	buildCmd.Flags().StringVar(&buildSource, "source", "",
		"application source tree (default \".\")")
	buildCmd.Flags().StringVar(&buildRunDir, "run-dir", "",
		"run location the payload is staged into (default \"/app\")")
	buildCmd.Flags().BoolVar(&buildThenRun, "run", false,
		"launch the server immediately after a successful build")

	rootCmd.AddCommand(buildCmd)
}
