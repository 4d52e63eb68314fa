package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/service/bot"
	"github.com/oshokin/shoretemp/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// mode overrides the update delivery mode.
	mode string
	// listenAddress overrides the HTTP listen address.
	listenAddress string

	// rootCmd represents the resident interactive bot.
	rootCmd = &cobra.Command{
		Use:   "shoretemp-bot",
		Short: "Answer Telegram commands with the Chicago Shore water temperature.",
		Long: `Runs the Telegram bot. Supported commands: /start, /temp and /help.

Updates arrive by long polling, or by webhook when a public URL is known
(RENDER_EXTERNAL_URL or WEBHOOK_URL). In auto mode the webhook is used
whenever such a URL is configured.

The HTTP listener serves /healthz, /metrics and, in webhook mode, the
webhook path. In polling mode it only starts when a listen address is set.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &bot.Options{
				ConfigPath:    configPath,
				Mode:          mode,
				ListenAddress: listenAddress,
			}

			return bot.Run(ctx, options)
		},
	}
)

// Execute runs the shoretemp-bot CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "",
		"update delivery: "+config.ModeAuto+", "+config.ModePolling+" or "+config.ModeWebhook)
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "HTTP listen address, e.g. :8443")
}
