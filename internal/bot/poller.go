package bot

import (
	"context"
	"iter"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/telegram"
)

const (
	// minPollBackoff is the pause after the first failed getUpdates call.
	minPollBackoff = time.Second
	// maxPollBackoff caps the pause between failing calls.
	maxPollBackoff = 30 * time.Second
)

// PollingClient is the part of the Bot API used by Poller.
type PollingClient interface {
	DeleteWebhook(ctx context.Context) error
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Poller is a Source that long-polls getUpdates.
type Poller struct {
	// client calls the Bot API.
	client PollingClient
	// timeout is the long-poll duration of a single call.
	timeout time.Duration
	// clock times the pauses after failures.
	clock clockwork.Clock
	// offset is the next update id to request. Telegram drops everything
	// below it, so acknowledged updates are never delivered twice.
	offset int64
}

// NewPoller creates a Poller. A nil clock means the real clock.
func NewPoller(client PollingClient, timeout time.Duration, clock clockwork.Clock) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Poller{
		client:  client,
		timeout: timeout,
		clock:   clock,
	}
}

// Prepare removes any registered webhook; Telegram refuses getUpdates while one is set.
func (p *Poller) Prepare(ctx context.Context) error {
	return p.client.DeleteWebhook(ctx)
}

// Updates long-polls until ctx is done. API errors are logged and retried
// with a growing pause. The sequence is not safe for concurrent ranging.
func (p *Poller) Updates(ctx context.Context) iter.Seq[telegram.Update] {
	return func(yield func(telegram.Update) bool) {
		backoff := time.Duration(0)

		for ctx.Err() == nil {
			updates, err := p.client.GetUpdates(ctx, p.offset, p.timeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				backoff = nextBackoff(backoff)
				logger.WarnKV(ctx, "Polling for updates failed", "error", err, "retry_in", backoff)

				select {
				case <-ctx.Done():
					return
				case <-p.clock.After(backoff):
				}

				continue
			}

			backoff = 0

			for _, u := range updates {
				if u.UpdateID >= p.offset {
					p.offset = u.UpdateID + 1
				}

				if !yield(u) {
					return
				}
			}
		}
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current <= 0 {
		return minPollBackoff
	}

	return min(current*2, maxPollBackoff)
}
