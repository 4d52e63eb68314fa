// Package telegram is a minimal Telegram Bot API client covering what
// shoretemp needs: sending messages, long-polling for updates, managing the
// webhook and publishing the command menu.
package telegram
