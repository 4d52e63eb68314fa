package temperature

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const chicagoShore = "Chicago Shore"

// noaaReport mimics the layout of the NWS Chicago marine weather product.
const noaaReport = `000
SXUS43 KLOT 161430
OMRLOT

MARINE WEATHER OBSERVATIONS AND LAKE TEMPERATURES FOR CHICAGO SHORE
AND SOUTHERN LAKE MICHIGAN
NATIONAL WEATHER SERVICE CHICAGO IL
930 AM CDT THU OCT 16 2026

LAKE MICHIGAN WATER TEMPERATURES
CALUMET HARBOR...........49.
CHICAGO SHORE............47.
MICHIGAN CITY............52.
$$
`

var retrieved = time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)

// requireReason asserts err is a *ParseError carrying reason.
func requireReason(t *testing.T, err error, reason Reason) {
	t.Helper()

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, reason, parseErr.Reason)
}

// TestExtract_Scenario checks the canonical "Chicago Shore: 54°F" report.
func TestExtract_Scenario(t *testing.T) {
	t.Parallel()

	r, err := Extract("Chicago Shore: 54°F", chicagoShore, retrieved)
	require.NoError(t, err)
	require.Equal(t, Reading{TemperatureF: 54, Station: chicagoShore, RetrievedAt: retrieved}, r)
}

// TestExtract_NOAALayout skips the header mention and reads the dot-leader line.
func TestExtract_NOAALayout(t *testing.T) {
	t.Parallel()

	r, err := Extract(noaaReport, chicagoShore, retrieved)
	require.NoError(t, err)
	require.InDelta(t, 47.0, r.TemperatureF, 0)

	r, err = Extract(noaaReport, "Michigan City", retrieved)
	require.NoError(t, err)
	require.InDelta(t, 52.0, r.TemperatureF, 0)
}

// TestExtract_Formats covers the formatting variations tolerated next to the label.
func TestExtract_Formats(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"Chicago Shore: 54°F":                  54,
		"CHICAGO SHORE 61 F":                   61,
		"chicago shore=48":                     48,
		"Chicago   Shore:   50.1 °F":           50.1,
		"Chicago Shore:\n\n  39F":              39,
		"Chicago Shore water temp around 45 F": 45,
		"Chicago Shore.....0.":                 0,
		"Chicago Shore: 100°F":                 100,
	}
	for text, want := range cases {
		r, err := Extract(text, chicagoShore, retrieved)
		require.NoError(t, err, text)
		require.InDelta(t, want, r.TemperatureF, 1e-9, text)
		require.Equal(t, chicagoShore, r.Station)
	}
}

// TestExtract_AllValuesInRange is the round-trip property over the valid range.
func TestExtract_AllValuesInRange(t *testing.T) {
	t.Parallel()

	for tenths := 0; tenths <= 1000; tenths += 7 {
		value := float64(tenths) / 10
		text := fmt.Sprintf("LAKE TEMPS\nCHICAGO SHORE.......%s.\n$$", formatValue(value))

		r, err := Extract(text, chicagoShore, retrieved)
		require.NoError(t, err, text)
		require.InDelta(t, value, r.TemperatureF, 1e-9, text)
	}
}

// TestExtract_StationNotFound covers texts without the label.
func TestExtract_StationNotFound(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "CALUMET HARBOR....49.", "Chicago: 54°F", "<html></html>"} {
		_, err := Extract(text, chicagoShore, retrieved)
		requireReason(t, err, ReasonStationNotFound)
	}

	_, err := Extract(noaaReport, "   ", retrieved)
	requireReason(t, err, ReasonStationNotFound)
}

// TestExtract_OutOfRange rejects values outside [0, 100].
func TestExtract_OutOfRange(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"Chicago Shore: -1°F", "Chicago Shore: 100.5", "CHICAGO SHORE....212."} {
		_, err := Extract(text, chicagoShore, retrieved)
		requireReason(t, err, ReasonOutOfRange)
	}
}

// TestExtract_Malformed reports a label with no usable number next to it.
func TestExtract_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Extract("Chicago Shore: N/A\nMichigan City: 55F", chicagoShore, retrieved)
	requireReason(t, err, ReasonMalformedNumber)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, "N/A", parseErr.Raw)
	require.Contains(t, err.Error(), "N/A")

	_, err = Extract("Chicago Shore", chicagoShore, retrieved)
	requireReason(t, err, ReasonMalformedNumber)
}

// TestExtract_CorruptNumber rejects digits that run straight into other characters.
func TestExtract_CorruptNumber(t *testing.T) {
	t.Parallel()

	for text, raw := range map[string]string{
		"Chicago Shore: 4x7°F": "4x7°F",
		"Chicago Shore: 1e5":   "1e5",
		"CHICAGO SHORE....4O.": "4O.",
	} {
		_, err := Extract(text, chicagoShore, retrieved)
		requireReason(t, err, ReasonMalformedNumber)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		require.Equal(t, raw, parseErr.Raw, text)
	}
}

// TestExtract_TimeBeforeValue reads the F-suffixed value past a leading clock time.
func TestExtract_TimeBeforeValue(t *testing.T) {
	t.Parallel()

	r, err := Extract("Chicago Shore: 12:30 PM 47F", chicagoShore, retrieved)
	require.NoError(t, err)
	require.InDelta(t, 47.0, r.TemperatureF, 0)
}

// TestExtract_WholeWordLabel ignores stations whose name only starts with the label.
func TestExtract_WholeWordLabel(t *testing.T) {
	t.Parallel()

	r, err := Extract("CHICAGO SHORELINE: 60F\nCHICAGO SHORE....47.", chicagoShore, retrieved)
	require.NoError(t, err)
	require.InDelta(t, 47.0, r.TemperatureF, 0)

	_, err = Extract("CHICAGO SHORELINE: 60F", chicagoShore, retrieved)
	requireReason(t, err, ReasonStationNotFound)
}

// TestNewReading_Validation rejects non-finite numbers.
func TestNewReading_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewReading(math.NaN(), chicagoShore, retrieved)
	requireReason(t, err, ReasonMalformedNumber)

	_, err = NewReading(math.Inf(1), chicagoShore, retrieved)
	requireReason(t, err, ReasonMalformedNumber)

	r, err := NewReading(50, chicagoShore, retrieved)
	require.NoError(t, err)
	require.Equal(t, retrieved, r.RetrievedAt)
}

// TestReasonOf unwraps both failure kinds and ignores foreign errors.
func TestReasonOf(t *testing.T) {
	t.Parallel()

	fetchErr := &FetchError{Reason: ReasonTimeout, Attempts: 3, Err: errors.New("deadline")}
	require.Equal(t, ReasonTimeout, ReasonOf(fmt.Errorf("wrapped: %w", fetchErr)))
	require.Contains(t, fetchErr.Error(), "3 attempt(s)")
	require.Equal(t, ReasonOutOfRange, ReasonOf(&ParseError{Reason: ReasonOutOfRange}))
	require.Equal(t, Reason(""), ReasonOf(errors.New("boom")))
	require.Equal(t, Reason(""), ReasonOf(nil))
}
