// Package bot receives Telegram updates and answers the bot commands.
//
// A Source yields updates regardless of how Telegram delivers them: Poller
// long-polls getUpdates, Webhook accepts pushed calls over HTTP. The Router
// handles one update at a time and never learns which Source produced it.
package bot
