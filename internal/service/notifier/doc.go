// Package notifier implements the scheduled run: check the station once,
// send the result to every configured chat and exit.
package notifier
