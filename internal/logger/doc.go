// Package logger wraps zap for the shoretemp binaries.
//
// A global sugared logger writes console-encoded lines to stderr so that
// stdout stays free for command output (for example the chat id listing).
// Services carry the logger in their context.Context: WithName scopes it to a
// component, WithKV attaches fields such as chat_id or update_id, and the
// package-level helpers (Info, InfoKV, ErrorKV, ...) log through whatever
// logger the context holds.
package logger
