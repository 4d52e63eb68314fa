package temperature

import (
	"math"
	"time"
)

// Plausible water temperature bounds in °F, inclusive.
const (
	MinFahrenheit = 0.0
	MaxFahrenheit = 100.0
)

// Reading is a validated water temperature observed at a station.
type Reading struct {
	// TemperatureF is the water temperature in degrees Fahrenheit.
	TemperatureF float64
	// Station is the label the value was found under.
	Station string
	// RetrievedAt is when the report was fetched.
	RetrievedAt time.Time
}

// NewReading validates value and builds a Reading. Non-finite values and
// values outside [MinFahrenheit, MaxFahrenheit] yield a *ParseError.
func NewReading(value float64, station string, retrievedAt time.Time) (Reading, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Reading{}, &ParseError{Reason: ReasonMalformedNumber, Station: station}
	}

	if value < MinFahrenheit || value > MaxFahrenheit {
		return Reading{}, &ParseError{Reason: ReasonOutOfRange, Station: station, Value: value}
	}

	return Reading{
		TemperatureF: value,
		Station:      station,
		RetrievedAt:  retrievedAt,
	}, nil
}
