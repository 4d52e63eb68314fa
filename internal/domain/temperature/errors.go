package temperature

import (
	"errors"
	"fmt"
)

// Reason tags why a reading could not be produced.
type Reason string

// Network failure reasons.
const (
	ReasonUnreachable Reason = "unreachable"
	ReasonTimeout     Reason = "timeout"
	ReasonBadStatus   Reason = "bad-status"
)

// Parse failure reasons.
const (
	ReasonStationNotFound Reason = "station-not-found"
	ReasonOutOfRange      Reason = "out-of-range"
	ReasonMalformedNumber Reason = "malformed-number"
)

// FetchError reports that the report could not be downloaded after all attempts.
type FetchError struct {
	// Reason classifies the last failed attempt.
	Reason Reason
	// Attempts is how many requests were made.
	Attempts int
	// Err is the underlying error of the last attempt.
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch report: %s after %d attempt(s): %v", e.Reason, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports that the report text did not yield a usable reading.
type ParseError struct {
	// Reason classifies the problem.
	Reason Reason
	// Station is the label that was searched for.
	Station string
	// Value is the rejected number for ReasonOutOfRange.
	Value float64
	// Raw is the offending text for ReasonMalformedNumber, if any.
	Raw string
}

func (e *ParseError) Error() string {
	switch e.Reason {
	case ReasonOutOfRange:
		return fmt.Sprintf("parse report: %s: %q reading %g outside [%g, %g]",
			e.Reason, e.Station, e.Value, MinFahrenheit, MaxFahrenheit)
	case ReasonMalformedNumber:
		if e.Raw != "" {
			return fmt.Sprintf("parse report: %s: %q reading %q", e.Reason, e.Station, e.Raw)
		}
	}

	return fmt.Sprintf("parse report: %s: %q", e.Reason, e.Station)
}

// ReasonOf extracts the failure reason from err, or "" when err carries none.
func ReasonOf(err error) Reason {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Reason
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Reason
	}

	return ""
}
