// Package dispatch fans a message out to a set of recipients, isolating
// failures so that one blocked chat does not prevent delivery to the others.
package dispatch

import (
	"context"
	"errors"

	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/observability"
)

// ErrNoDeliveries is returned when every recipient failed.
var ErrNoDeliveries = errors.New("message was not delivered to any recipient")

// Sender delivers text to a single recipient.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// DeliveryResult is the outcome for one recipient.
type DeliveryResult struct {
	Recipient string
	Err       error
}

// Success reports whether the message reached the recipient.
func (r DeliveryResult) Success() bool {
	return r.Err == nil
}

// Report lists the outcome for every recipient, in dispatch order.
type Report struct {
	Results []DeliveryResult
}

// Delivered counts successful deliveries.
func (r Report) Delivered() int {
	n := 0

	for _, res := range r.Results {
		if res.Success() {
			n++
		}
	}

	return n
}

// Failed counts failed deliveries.
func (r Report) Failed() int {
	return len(r.Results) - r.Delivered()
}

// Dispatcher sends one message to many recipients.
type Dispatcher struct {
	sender  Sender
	metrics *observability.Metrics
}

// New creates a Dispatcher; metrics may be nil.
func New(sender Sender, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{sender: sender, metrics: metrics}
}

// Dispatch sends text to each recipient in order and records every outcome.
// It returns ErrNoDeliveries only when recipients is non-empty and all sends
// failed; partial failures are reported through the Report alone.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, recipients []string) (Report, error) {
	report := Report{Results: make([]DeliveryResult, 0, len(recipients))}

	for _, recipient := range recipients {
		err := d.sender.SendMessage(ctx, recipient, text)
		d.metrics.ObserveDelivery(err == nil)

		if err != nil {
			logger.ErrorKV(ctx, "Delivery failed", "chat_id", recipient, "error", err)
		} else {
			logger.InfoKV(ctx, "Message delivered", "chat_id", recipient)
		}

		report.Results = append(report.Results, DeliveryResult{Recipient: recipient, Err: err})
	}

	if len(recipients) > 0 && report.Delivered() == 0 {
		return report, ErrNoDeliveries
	}

	return report, nil
}
