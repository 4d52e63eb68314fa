package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/shoretemp/internal/domain/temperature"
	"github.com/oshokin/shoretemp/internal/observability"
	"github.com/oshokin/shoretemp/internal/retry"
)

const reportBody = "CHICAGO SHORE............47.\n"

// noPause retries immediately so tests stay fast.
var noPause = retry.Policy{Attempts: 3}

func requireFetchReason(t *testing.T, err error, reason temperature.Reason, attempts int) {
	t.Helper()

	var fetchErr *temperature.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, reason, fetchErr.Reason)
	assert.Equal(t, attempts, fetchErr.Attempts)
}

// TestFetcher_Success verifies a plain GET returns the report body.
func TestFetcher_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.UserAgent(), "ShoreTemp/")
		_, _ = w.Write([]byte(reportBody))
	}))
	defer srv.Close()

	body, err := NewFetcher(srv.URL, WithRetryPolicy(noPause)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reportBody, body)
}

// TestFetcher_RetriesThenSucceeds verifies transient 503s are retried until the third attempt succeeds.
func TestFetcher_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		_, _ = w.Write([]byte(reportBody))
	}))
	defer srv.Close()

	body, err := NewFetcher(srv.URL, WithRetryPolicy(noPause)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reportBody, body)
	assert.Equal(t, int32(3), calls.Load())
}

// TestFetcher_BadStatus makes exactly three attempts before giving up.
func TestFetcher_BadStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	_, err := NewFetcher(srv.URL, WithRetryPolicy(noPause), WithMetrics(metrics)).Fetch(context.Background())
	requireFetchReason(t, err, temperature.ReasonBadStatus, 3)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, err.Error(), "500")
	assert.InDelta(t, 3.0, testutil.ToFloat64(metrics.FetchAttempts.WithLabelValues("bad-status")), 0)
}

// TestFetcher_Timeout verifies a stalled server is classified as a timeout after three attempts.
func TestFetcher_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher(srv.URL, WithRetryPolicy(noPause), WithTimeout(50*time.Millisecond)).
		Fetch(context.Background())
	requireFetchReason(t, err, temperature.ReasonTimeout, 3)
}

// TestFetcher_Unreachable verifies a closed port is classified as unreachable.
func TestFetcher_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewFetcher(url, WithRetryPolicy(noPause)).Fetch(context.Background())
	requireFetchReason(t, err, temperature.ReasonUnreachable, 3)
}

// TestClassify verifies errors map onto failure reasons.
func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, temperature.ReasonBadStatus, classify(&statusError{code: http.StatusNotFound}))
	assert.Equal(t, temperature.ReasonTimeout, classify(context.DeadlineExceeded))
	assert.Equal(t, temperature.ReasonUnreachable, classify(errors.New("connection refused")))
	assert.Equal(t, "success", outcome(nil))
}
