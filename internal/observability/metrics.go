// Package observability defines the Prometheus metrics shared by both binaries.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shoretemp"

// Metrics holds the counters and gauges for fetching, parsing, delivery and commands.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchAttempts   *prometheus.CounterVec // labels: outcome={success,unreachable,timeout,bad-status}
	Readings        *prometheus.CounterVec // labels: outcome={success,station-not-found,...}
	Deliveries      *prometheus.CounterVec // labels: outcome={success,error}
	Commands        *prometheus.CounterVec // labels: command={start,help,temp,other}
	LastTemperature prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Report download attempts by outcome.",
		}, []string{"outcome"}),
		Readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Temperature checks by outcome (success or failure reason).",
		}, []string{"outcome"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Messages sent to recipients by outcome.",
		}, []string{"outcome"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Bot commands handled by command.",
		}, []string{"command"}),
		LastTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_temperature_fahrenheit",
			Help:      "Most recent successfully parsed water temperature.",
		}),
	}

	reg.MustRegister(
		m.FetchAttempts,
		m.Readings,
		m.Deliveries,
		m.Commands,
		m.LastTemperature,
	)

	return m
}

// ObserveFetch counts one download attempt.
func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}

	m.FetchAttempts.WithLabelValues(outcome).Inc()
}

// ObserveReading counts one temperature check; value is only used on success.
func (m *Metrics) ObserveReading(outcome string, value float64) {
	if m == nil {
		return
	}

	m.Readings.WithLabelValues(outcome).Inc()

	if outcome == "success" {
		m.LastTemperature.Set(value)
	}
}

// ObserveDelivery counts one message send.
func (m *Metrics) ObserveDelivery(ok bool) {
	if m == nil {
		return
	}

	outcome := "success"
	if !ok {
		outcome = "error"
	}

	m.Deliveries.WithLabelValues(outcome).Inc()
}

// ObserveCommand counts one handled bot command.
func (m *Metrics) ObserveCommand(command string) {
	if m == nil {
		return
	}

	m.Commands.WithLabelValues(command).Inc()
}
