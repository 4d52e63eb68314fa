// Package retry runs an operation a bounded number of times with a growing
// pause between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// Attempts is the total number of tries, including the first one.
	Attempts int
	// Delay is the pause before the second attempt.
	Delay time.Duration
	// Multiplier scales the pause after every further failure; values below 1 mean 1.
	Multiplier float64
	// MaxDelay caps the pause; zero means no cap.
	MaxDelay time.Duration
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so that Do stops retrying and returns err unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// used up or ctx is done. Attempts are numbered from 1. The returned error is
// the last one fn produced, or the context error if ctx ended first.
func (p Policy) Do(ctx context.Context, clock clockwork.Clock, fn func(ctx context.Context, attempt int) error) error {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	attempts := max(p.Attempts, 1)
	delay := p.Delay

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		if attempt == attempts {
			break
		}

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}

		delay = p.next(delay)
	}

	return err
}

// next grows delay by the multiplier and applies the cap.
func (p Policy) next(delay time.Duration) time.Duration {
	if p.Multiplier > 1 {
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	return delay
}
