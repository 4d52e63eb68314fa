package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/service/chatid"
	"github.com/oshokin/shoretemp/internal/service/notifier"
	"github.com/oshokin/shoretemp/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// getChatID switches to the chat discovery helper.
	getChatID bool
	// reportURL overrides the report URL.
	reportURL string
	// station overrides the station label.
	station string

	// rootCmd represents the scheduled notification run.
	rootCmd = &cobra.Command{
		Use:   "shoretemp",
		Short: "Send the current Chicago Shore water temperature to Telegram.",
		Long: `Fetches the NOAA marine weather report, extracts the Chicago Shore water
temperature and sends it to every chat in TELEGRAM_CHAT_ID (or chat_ids in the
config file), then exits.

Fetch and delivery problems are reported to recipients and logged; the exit
status is non-zero only when the configuration is invalid.

Use --get-chat-id after messaging the bot to find the chat ids to configure.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if getChatID {
				return chatid.Run(ctx, &chatid.Options{
					ConfigPath: configPath,
					Out:        cmd.OutOrStdout(),
				})
			}

			options := &notifier.Options{
				ConfigPath: configPath,
				ReportURL:  reportURL,
				Station:    station,
			}

			return notifier.Run(ctx, options)
		},
	}
)

// Execute runs the shoretemp CLI and exits with non-zero status on error.
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
	rootCmd.Flags().BoolVar(&getChatID, "get-chat-id", false,
		"print the chats that recently messaged the bot and exit")
	rootCmd.Flags().StringVar(&reportURL, "url", "", "report URL override")
	rootCmd.Flags().StringVar(&station, "station", "", "station label override")
}
