package temperature

import (
	"fmt"
	"strconv"
)

// EncouragementThreshold is the temperature above which the lake note is added.
const EncouragementThreshold = 50.0

// encouragement is appended to readings strictly above EncouragementThreshold.
const encouragement = " — good time for the lake!"

// FormatReading renders a successful reading.
func FormatReading(r Reading) string {
	msg := fmt.Sprintf("%s water temp: %s°F", r.Station, formatValue(r.TemperatureF))
	if r.TemperatureF > EncouragementThreshold {
		msg += encouragement
	}

	return msg
}

// FormatFailure renders a friendly message for err. Each failure reason gets
// its own wording; the error text itself never reaches the user.
func FormatFailure(station string, err error) string {
	switch ReasonOf(err) {
	case ReasonTimeout:
		return fmt.Sprintf("Sorry, the NOAA report took too long to respond, "+
			"so I couldn't get the %s water temperature. Try again later.", station)
	case ReasonBadStatus:
		return fmt.Sprintf("Sorry, the NOAA report isn't available right now, "+
			"so I couldn't get the %s water temperature. Try again later.", station)
	case ReasonUnreachable:
		return fmt.Sprintf("Sorry, I couldn't reach NOAA to get the %s water temperature. "+
			"Try again later.", station)
	case ReasonStationNotFound:
		return fmt.Sprintf("Sorry, I couldn't find %s in the latest NOAA report.", station)
	case ReasonOutOfRange:
		return fmt.Sprintf("Sorry, the %s reading in the latest NOAA report doesn't look right, "+
			"so I'm not passing it on.", station)
	case ReasonMalformedNumber:
		return fmt.Sprintf("Sorry, I couldn't read the %s temperature in the latest NOAA report.", station)
	default:
		return fmt.Sprintf("Sorry, I couldn't get the %s water temperature right now. Try again later.", station)
	}
}

// Format renders either the reading or, when err is non-nil, the failure.
func Format(station string, r Reading, err error) string {
	if err != nil {
		return FormatFailure(station, err)
	}

	return FormatReading(r)
}

// formatValue prints whole numbers without a decimal point and keeps the
// report's precision otherwise.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
