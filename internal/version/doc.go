// Package version holds build metadata injected through -ldflags and renders
// it for the `version` subcommand and for the HTTP User-Agent sent to NOAA.
package version
