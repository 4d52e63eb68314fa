package chatid

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/telegram"
)

// Options controls the chat discovery run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Out receives the listing. Defaults to stdout.
	Out io.Writer
}

// UpdatesReader reads pending updates.
type UpdatesReader interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Run prints every distinct chat found in the pending updates.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "get-chat-id")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	client := telegram.NewClient(
		cfg.BotToken,
		telegram.WithBaseURL(cfg.Telegram.APIURL),
		telegram.WithCallTimeout(cfg.Timeout),
	)

	return List(ctx, client, out)
}

// List reads pending updates once, without waiting, and writes one line per
// chat. The chat that sent the latest message is marked. An empty backlog is
// not an error: setup instructions are printed instead.
func List(ctx context.Context, reader UpdatesReader, out io.Writer) error {
	updates, err := reader.GetUpdates(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("read updates: %w", err)
	}

	chats, latest := distinctChats(updates)
	logger.DebugKV(ctx, "Read pending updates", "updates", len(updates), "chats", len(chats))

	if len(chats) == 0 {
		fmt.Fprint(out, instructions)
		return nil
	}

	for _, chat := range chats {
		line := fmt.Sprintf("  Chat ID: %d  (%s)", chat.ID, chat.DisplayName())
		if chat.ID == latest {
			line += "  <- last message"
		}

		fmt.Fprintln(out, line)
	}

	fmt.Fprint(out, usage)

	return nil
}

// distinctChats keeps the first occurrence of every chat, in update order,
// and returns the id of the chat behind the last message.
func distinctChats(updates []telegram.Update) ([]telegram.Chat, int64) {
	var (
		seen   = make(map[int64]struct{}, len(updates))
		chats  = make([]telegram.Chat, 0, len(updates))
		latest int64
	)

	for _, u := range updates {
		if u.Message == nil {
			continue
		}

		chat := u.Message.Chat
		latest = chat.ID

		if _, ok := seen[chat.ID]; ok {
			continue
		}

		seen[chat.ID] = struct{}{}
		chats = append(chats, chat)
	}

	return chats, latest
}

const instructions = `
No messages found. Do this:
  1. Open Telegram and find your bot (the one you created with @BotFather).
  2. Tap Start or send any message (e.g. 'hi').
  3. Run this command again: shoretemp --get-chat-id
`

const usage = `
Put one of these in your config as chat_ids, or export TELEGRAM_CHAT_ID=
For multiple users, use comma-separated: TELEGRAM_CHAT_ID=123456,789012
`
