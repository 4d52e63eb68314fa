//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/observability"
	"github.com/oshokin/shoretemp/internal/report"
	"github.com/oshokin/shoretemp/internal/retry"
	"github.com/oshokin/shoretemp/internal/telegram"
)

// Dependencies are the collaborators built once at startup and passed to services.
type Dependencies struct {
	Config   *config.Config
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Telegram *telegram.Client
	Checker  *Checker
}

// NewDependencies wires the Telegram client, the report fetcher and the
// Checker from cfg. It also applies the configured log level.
func NewDependencies(cfg *config.Config) *Dependencies {
	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics := observability.NewMetrics(registry)

	client := telegram.NewClient(
		cfg.BotToken,
		telegram.WithBaseURL(cfg.Telegram.APIURL),
		telegram.WithCallTimeout(cfg.Timeout),
	)

	fetcher := report.NewFetcher(
		cfg.Report.URL,
		report.WithTimeout(cfg.Timeout),
		report.WithRetryPolicy(retry.Policy{
			Attempts:   cfg.Report.Attempts,
			Delay:      cfg.Report.RetryDelay,
			Multiplier: cfg.Report.RetryMultiplier,
		}),
		report.WithMetrics(metrics),
	)

	return &Dependencies{
		Config:   cfg,
		Registry: registry,
		Metrics:  metrics,
		Telegram: client,
		Checker:  NewChecker(fetcher, cfg.Report.Station, nil, metrics),
	}
}
