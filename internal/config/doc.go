// Package config loads shoretemp settings.
//
// Settings come from an optional YAML file, are then overridden by the
// environment variables used in deployment (TELEGRAM_BOT_TOKEN,
// TELEGRAM_CHAT_ID, NOAA_OMR_URL, ...), and finally defaulted and validated.
// Validation fails fast so that a missing credential stops the process before
// any network call is made.
package config
