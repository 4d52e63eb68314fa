// Package httpapi serves the bot's HTTP surface: liveness, Prometheus
// metrics and, in webhook mode, the endpoint Telegram pushes updates to.
package httpapi
