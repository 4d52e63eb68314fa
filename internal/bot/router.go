package bot

import (
	"context"
	"fmt"

	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/observability"
	"github.com/oshokin/shoretemp/internal/telegram"
)

// Commands understood by the Router.
const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandTemp  = "temp"

	// commandOther labels every other text in metrics.
	commandOther = "other"
)

// FetchingText is sent right after /temp so the user sees that work started.
const FetchingText = "Fetching temperature..."

// MenuCommands is the command menu published with setMyCommands.
var MenuCommands = []telegram.BotCommand{
	{Command: CommandTemp, Description: "Get current water temperature"},
	{Command: CommandHelp, Description: "Show available commands"},
}

// Replier sends a text message to a chat.
type Replier interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// Messenger produces the current temperature message.
type Messenger interface {
	Message(ctx context.Context) string
}

// Router maps an incoming command to its reply.
type Router struct {
	// replier sends replies back to the originating chat.
	replier Replier
	// checker runs a temperature check for /temp.
	checker Messenger
	// station names the shore station in static texts.
	station string
	// metrics counts handled commands; may be nil.
	metrics *observability.Metrics
	// username is the bot's own username; commands naming another bot are
	// ignored. Empty accepts every mention.
	username string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithUsername sets the bot's own username, as reported by getMe.
func WithUsername(username string) RouterOption {
	return func(r *Router) {
		r.username = username
	}
}

// NewRouter creates a Router.
func NewRouter(
	replier Replier,
	checker Messenger,
	station string,
	metrics *observability.Metrics,
	opts ...RouterOption,
) *Router {
	r := &Router{
		replier: replier,
		checker: checker,
		station: station,
		metrics: metrics,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Handle answers one update. Updates without a text message are ignored, as
// are commands addressed to another bot ("/temp@OtherBot" in a group).
// Any other text that is not a known command gets a hint pointing at /temp.
// A panic while handling is recovered and returned as an error.
func (r *Router) Handle(ctx context.Context, update telegram.Update) (err error) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return nil
	}

	chatID := msg.Chat.ChatID()
	ctx = logger.WithKV(ctx, "chat_id", chatID, "update_id", update.UpdateID)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while handling update %d: %v", update.UpdateID, p)
			logger.ErrorKV(ctx, "Recovered from panic in command handler", "panic", p)
		}
	}()

	if mention := msg.Mention(); mention != "" && !msg.IsCommandFor(r.username) {
		logger.DebugKV(ctx, "Ignoring command for another bot", "mention", mention)
		return nil
	}

	command := msg.Command()
	logger.DebugKV(ctx, "Handling message", "command", command)

	switch command {
	case CommandStart:
		r.metrics.ObserveCommand(CommandStart)
		return r.reply(ctx, chatID, r.welcomeText())
	case CommandHelp:
		r.metrics.ObserveCommand(CommandHelp)
		return r.reply(ctx, chatID, r.helpText())
	case CommandTemp:
		r.metrics.ObserveCommand(CommandTemp)
		return r.temperature(ctx, chatID)
	default:
		r.metrics.ObserveCommand(commandOther)
		return r.reply(ctx, chatID, r.hintText())
	}
}

// temperature acknowledges the request, runs a check and replies with the result.
func (r *Router) temperature(ctx context.Context, chatID string) error {
	// The acknowledgement is best effort; the result is still worth sending.
	if err := r.reply(ctx, chatID, FetchingText); err != nil {
		logger.WarnKV(ctx, "Failed to acknowledge request", "error", err)
	}

	return r.reply(ctx, chatID, r.checker.Message(ctx))
}

func (r *Router) reply(ctx context.Context, chatID, text string) error {
	if err := r.replier.SendMessage(ctx, chatID, text); err != nil {
		return fmt.Errorf("reply to chat %s: %w", chatID, err)
	}

	return nil
}

func (r *Router) welcomeText() string {
	return fmt.Sprintf("Hey! I'm the %s Temperature Bot.\n\n"+
		"Send /temp to get the current Lake Michigan water temperature.\n"+
		"Send /help to see all commands.", r.station)
}

func (r *Router) helpText() string {
	return fmt.Sprintf("Available commands:\n\n"+
		"/temp  - Get the current %s water temperature\n"+
		"/help  - Show this help message", r.station)
}

func (r *Router) hintText() string {
	return fmt.Sprintf("Send /temp to get the %s water temperature.", r.station)
}
