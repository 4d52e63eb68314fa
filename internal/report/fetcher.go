package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/shoretemp/internal/domain/temperature"
	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/observability"
	"github.com/oshokin/shoretemp/internal/retry"
	"github.com/oshokin/shoretemp/internal/version"
)

// maxBodySize guards against a misbehaving server streaming forever.
const maxBodySize = 4 << 20

// Fetcher downloads the report over HTTP with bounded retries.
type Fetcher struct {
	// url is the report location.
	url string
	// httpClient performs the requests.
	httpClient *http.Client
	// timeout bounds every single attempt.
	timeout time.Duration
	// policy decides how many attempts are made and how long to pause.
	policy retry.Policy
	// clock drives the pauses between attempts.
	clock clockwork.Clock
	// metrics counts attempts by outcome; may be nil.
	metrics *observability.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithRetryPolicy sets the attempt count and pauses.
func WithRetryPolicy(p retry.Policy) Option {
	return func(f *Fetcher) {
		f.policy = p
	}
}

// WithClock swaps the clock used for pauses between attempts.
func WithClock(c clockwork.Clock) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.clock = c
		}
	}
}

// WithMetrics records attempt outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a Fetcher for url. By default it makes three attempts
// two seconds apart with a ten second timeout each.
func NewFetcher(url string, opts ...Option) *Fetcher {
	f := &Fetcher{
		url:        url,
		httpClient: &http.Client{},
		timeout:    10 * time.Second,
		policy:     retry.Policy{Attempts: 3, Delay: 2 * time.Second},
		clock:      clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// statusError reports a non-2xx response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

// Fetch returns the raw report body, unmodified. When every attempt fails it
// returns a *temperature.FetchError classified by the last attempt.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	var (
		body     string
		attempts int
	)

	err := f.policy.Do(ctx, f.clock, func(ctx context.Context, attempt int) error {
		attempts = attempt

		var err error

		body, err = f.get(ctx)
		f.metrics.ObserveFetch(outcome(err))

		if err != nil {
			logger.WarnKV(ctx, "Report fetch attempt failed", "attempt", attempt, "url", f.url, "error", err)
			return err
		}

		logger.DebugKV(ctx, "Report fetched", "attempt", attempt, "bytes", len(body))

		return nil
	})
	if err != nil {
		return "", &temperature.FetchError{Reason: classify(err), Attempts: attempts, Err: err}
	}

	return body, nil
}

// get performs a single bounded attempt.
func (f *Fetcher) get(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("get report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return "", &statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}

	return string(data), nil
}

// classify maps an attempt error to a network failure reason.
func classify(err error) temperature.Reason {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return temperature.ReasonBadStatus
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return temperature.ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return temperature.ReasonTimeout
	}

	return temperature.ReasonUnreachable
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}

	return string(classify(err))
}
