package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/dispatch"
	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/service/common"
)

// Options controls a scheduled run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ReportURL overrides the report URL from config when set.
	ReportURL string
	// Station overrides the station label from config when set.
	Station string
}

// messenger produces the text to send.
type messenger interface {
	Message(ctx context.Context) string
}

// Run performs one check and fans the message out to every recipient.
// Only configuration problems are returned as errors: fetch, parse and
// delivery failures are logged and the run still completes.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "shoretemp")

	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	deps := common.NewDependencies(cfg)

	logger.InfoKV(ctx, "Checking water temperature",
		"station", cfg.Report.Station, "url", cfg.Report.URL, "recipients", len(cfg.ChatIDs))

	notify(ctx, deps.Checker, dispatch.New(deps.Telegram, deps.Metrics), cfg.ChatIDs)

	return nil
}

// LoadConfig loads settings, applies command line overrides and requires at
// least one recipient.
func LoadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.ReportURL != "" {
		cfg.Report.URL = opts.ReportURL
	}

	if opts.Station != "" {
		cfg.Report.Station = opts.Station
	}

	// Overrides may have changed validated fields.
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := cfg.RequireRecipients(); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return cfg, nil
}

// notify builds the message and dispatches it, logging the summary.
func notify(ctx context.Context, m messenger, d *dispatch.Dispatcher, recipients []string) dispatch.Report {
	text := m.Message(ctx)

	report, err := d.Dispatch(ctx, text, recipients)

	switch {
	case errors.Is(err, dispatch.ErrNoDeliveries):
		logger.ErrorKV(ctx, "Notification reached no recipient", "recipients", len(recipients))
	case report.Failed() > 0:
		logger.WarnKV(ctx, "Notification partially delivered",
			"delivered", report.Delivered(), "failed", report.Failed())
	default:
		logger.InfoKV(ctx, "Notification delivered", "delivered", report.Delivered())
	}

	return report
}
