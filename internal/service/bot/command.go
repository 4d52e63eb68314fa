package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/oshokin/shoretemp/internal/api/httpapi"
	inbound "github.com/oshokin/shoretemp/internal/bot"
	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/service/common"
	"github.com/oshokin/shoretemp/internal/telegram"
)

// Options controls the interactive bot process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Mode overrides the delivery mode from config (auto, polling or webhook).
	Mode string
	// ListenAddress overrides the HTTP listen address from config.
	ListenAddress string
}

// ErrWebhookURLRequired indicates webhook mode without a public URL to register.
var ErrWebhookURLRequired = errors.New("webhook mode requires a public URL (RENDER_EXTERNAL_URL or WEBHOOK_URL)")

// botAPI is the part of the Bot API needed to receive updates.
type botAPI interface {
	inbound.PollingClient
	inbound.WebhookClient
}

// updateHandler answers a single update.
type updateHandler interface {
	Handle(ctx context.Context, update telegram.Update) error
}

// Run answers bot commands until ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "shoretemp-bot")

	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	deps := common.NewDependencies(cfg)

	var routerOpts []inbound.RouterOption

	// Without the username, group commands naming other bots are answered too.
	if me, err := deps.Telegram.GetMe(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to look up the bot account", "error", err)
	} else {
		logger.InfoKV(ctx, "Running as bot", "username", me.Username)

		routerOpts = append(routerOpts, inbound.WithUsername(me.Username))
	}

	router := inbound.NewRouter(deps.Telegram, deps.Checker, cfg.Report.Station, deps.Metrics, routerOpts...)

	source, webhook, err := newSource(cfg, deps.Telegram)
	if err != nil {
		return err
	}

	// A missing menu only hides the command hints in Telegram clients.
	if err := deps.Telegram.SetMyCommands(ctx, inbound.MenuCommands); err != nil {
		logger.WarnKV(ctx, "Failed to publish the command menu", "error", err)
	}

	mode := config.ModePolling
	if webhook != nil {
		mode = config.ModeWebhook
	}

	if err := source.Prepare(ctx); err != nil {
		return fmt.Errorf("prepare %s mode: %w", mode, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		serveCh = make(chan error, 1)
	)

	if cfg.Bot.ListenAddress != "" {
		server := httpapi.NewServer(httpapi.Options{
			Address:     cfg.Bot.ListenAddress,
			Gatherer:    deps.Registry,
			WebhookPath: cfg.Bot.WebhookPath,
			Webhook:     webhook,
		})

		wg.Go(func() {
			if err := server.Run(ctx); err != nil {
				serveCh <- err
				// Without a listener a webhook bot receives nothing.
				cancel()
			}
		})
	}

	logger.InfoKV(ctx, "Bot started",
		"mode", mode, "station", cfg.Report.Station, "listen_address", cfg.Bot.ListenAddress)

	serve(ctx, source, router, cfg.Bot.MaxConcurrent)

	cancel()
	wg.Wait()

	select {
	case err := <-serveCh:
		return err
	default:
		logger.Info(ctx, "Bot stopped")

		return nil
	}
}

// LoadConfig loads settings and applies command line overrides.
func LoadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.Mode != "" {
		cfg.Bot.Mode = opts.Mode
	}

	if opts.ListenAddress != "" {
		cfg.Bot.ListenAddress = opts.ListenAddress
	}

	// The mode decides the default listen address, so validate again.
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return cfg, nil
}

// newSource picks the update source for the configured mode. The returned
// handler is non-nil only in webhook mode and must be served over HTTP.
func newSource(cfg *config.Config, client botAPI) (inbound.Source, http.Handler, error) {
	if !cfg.WebhookEnabled() {
		return inbound.NewPoller(client, cfg.Bot.PollTimeout, nil), nil, nil
	}

	if cfg.Bot.WebhookURL == "" {
		return nil, nil, ErrWebhookURLRequired
	}

	webhook := inbound.NewWebhook(client, cfg.WebhookEndpoint(), cfg.Bot.WebhookSecret, cfg.Bot.MaxConcurrent)

	return webhook, webhook, nil
}

// serve hands every update to its own goroutine, running at most limit at
// once, and waits for the running handlers before returning.
func serve(ctx context.Context, source inbound.Source, handler updateHandler, limit int) {
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, max(limit, 1))
	)

	defer wg.Wait()

	for update := range source.Updates(ctx) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		wg.Go(func() {
			defer func() { <-sem }()

			if err := handler.Handle(ctx, update); err != nil {
				logger.ErrorKV(ctx, "Failed to handle update", "update_id", update.UpdateID, "error", err)
			}
		})
	}
}
