// Package bot runs the interactive mode: it receives updates by polling or
// webhook and answers each one concurrently.
package bot
