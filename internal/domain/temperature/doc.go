// Package temperature contains the pure core of shoretemp: the Reading value,
// the failure taxonomy for fetching and parsing, extraction of a station
// reading from report text, and rendering of the user-facing message.
//
// Nothing in this package performs I/O, so every function is deterministic
// given its inputs.
package temperature
