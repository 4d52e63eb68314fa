package temperature

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// valuePrefix matches a number right after the label once separators are skipped.
// Separators cover the report's dot leaders ("CHICAGO SHORE......47.") as well
// as "Label: 54°F" and "Label = 54 F". The number must end at whitespace, a
// degree sign, an F unit, a closing dot or the end of text, so "4x7" or "1e5"
// are never cut short into a smaller value.
var valuePrefix = regexp.MustCompile(`^[\s.:=]*(-?\d+(?:\.\d+)?)(?:\.(?:\s|$)|\s|°|F\b|$)`)

// firstToken grabs whatever sits next to the label when it is not a number.
var firstToken = regexp.MustCompile(`^[\s.:=]*(\S+)`)

// Extract finds the reading for station in text. The label is matched
// case-insensitively with any run of whitespace between its words.
//
// For each occurrence of the label, the number immediately following it is
// taken; failing that, the first standalone number on the same line carrying
// an F suffix, so "CHICAGO SHORE 12:30 PM 47F" reads 47.
// The first occurrence that yields a number decides the result, so a label in
// a report header does not hide the data line further down.
func Extract(text, station string, retrievedAt time.Time) (Reading, error) {
	label := strings.TrimSpace(station)
	if label == "" {
		return Reading{}, &ParseError{Reason: ReasonStationNotFound, Station: station}
	}

	labelRe, suffixedRe := compileLabel(label)

	matches := labelRe.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return Reading{}, &ParseError{Reason: ReasonStationNotFound, Station: label}
	}

	var malformed string

	for _, m := range matches {
		rest := text[m[1]:]

		raw, ok := adjacentNumber(rest)
		if !ok {
			raw, ok = suffixedNumber(suffixedRe, text[m[0]:])
		}

		if !ok {
			if malformed == "" {
				malformed = adjacentToken(rest)
			}

			continue
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Reading{}, &ParseError{Reason: ReasonMalformedNumber, Station: label, Raw: raw}
		}

		return NewReading(value, label, retrievedAt)
	}

	return Reading{}, &ParseError{Reason: ReasonMalformedNumber, Station: label, Raw: malformed}
}

// compileLabel builds the label matcher and the same-line "<number> F" fallback.
func compileLabel(label string) (*regexp.Regexp, *regexp.Regexp) {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}

	pattern := strings.Join(words, `\s+`)

	// Word boundaries keep "Chicago Shore" from matching inside "CHICAGO SHORELINE".
	if startsWithWord(label) {
		pattern = `\b` + pattern
	}

	if endsWithWord(label) {
		pattern += `\b`
	}

	return regexp.MustCompile(`(?i)` + pattern),
		regexp.MustCompile(`(?i)^` + pattern + `[^\n]*?[\s:=](-?\d+(?:\.\d+)?)\s*°?\s*F\b`)
}

func startsWithWord(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)

	return isWordRune(r)
}

func endsWithWord(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)

	return isWordRune(r)
}

// isWordRune mirrors the ASCII word class that \b is defined over.
func isWordRune(r rune) bool {
	return r < utf8.RuneSelf && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

func adjacentNumber(rest string) (string, bool) {
	m := valuePrefix.FindStringSubmatch(rest)
	if m == nil {
		return "", false
	}

	return m[1], true
}

func suffixedNumber(re *regexp.Regexp, fromLabel string) (string, bool) {
	m := re.FindStringSubmatch(fromLabel)
	if m == nil {
		return "", false
	}

	return m[1], true
}

func adjacentToken(rest string) string {
	m := firstToken.FindStringSubmatch(rest)
	if m == nil {
		return ""
	}

	return m[1]
}
