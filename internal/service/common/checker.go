//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/shoretemp/internal/domain/temperature"
	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/observability"
	"github.com/oshokin/shoretemp/internal/report"
)

// ReportFetcher returns the raw report body.
type ReportFetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Checker runs one fetch, extract and format cycle. It keeps no state
// between calls, so one Checker can serve concurrent requests.
type Checker struct {
	// fetcher downloads the report.
	fetcher ReportFetcher
	// station is the label looked up in the report.
	station string
	// clock stamps readings.
	clock clockwork.Clock
	// metrics counts reading outcomes; may be nil.
	metrics *observability.Metrics
}

// NewChecker creates a Checker for station. A nil clock means the real clock.
func NewChecker(fetcher ReportFetcher, station string, clock clockwork.Clock, metrics *observability.Metrics) *Checker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Checker{
		fetcher: fetcher,
		station: station,
		clock:   clock,
		metrics: metrics,
	}
}

// Station returns the configured station label.
func (c *Checker) Station() string {
	return c.station
}

// Check fetches the report and extracts the station reading. Errors are
// *temperature.FetchError or *temperature.ParseError.
func (c *Checker) Check(ctx context.Context) (temperature.Reading, error) {
	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.observe(ctx, temperature.Reading{}, err)
		return temperature.Reading{}, err
	}

	reading, err := temperature.Extract(report.ToText(raw), c.station, c.clock.Now())
	c.observe(ctx, reading, err)

	return reading, err
}

// Message runs Check and renders the outcome for the end user.
func (c *Checker) Message(ctx context.Context) string {
	reading, err := c.Check(ctx)

	return temperature.Format(c.station, reading, err)
}

func (c *Checker) observe(ctx context.Context, reading temperature.Reading, err error) {
	if err != nil {
		c.metrics.ObserveReading(string(temperature.ReasonOf(err)), 0)
		logger.ErrorKV(ctx, "Temperature check failed",
			"station", c.station, "reason", temperature.ReasonOf(err), "error", err)

		return
	}

	c.metrics.ObserveReading("success", reading.TemperatureF)
	logger.InfoKV(ctx, "Temperature check succeeded",
		"station", reading.Station, "temperature_f", reading.TemperatureF)
}
