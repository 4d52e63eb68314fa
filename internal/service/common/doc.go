// Package common holds pieces shared by the scheduled notifier, the chat id
// helper and the interactive bot: startup wiring from configuration and the
// Checker that turns the remote report into a user-facing message.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
