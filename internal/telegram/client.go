package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/shoretemp/internal/logger"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// APIError is a failure reported by the Bot API or its HTTP transport.
type APIError struct {
	// Method is the Bot API method that failed.
	Method string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Description is the reason given by Telegram.
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.StatusCode, e.Description)
}

// Client calls the Bot API for one bot token.
type Client struct {
	// token is the bot credential; it is part of every request path.
	token string
	// baseURL is the Bot API endpoint.
	baseURL string
	// httpClient performs the requests.
	httpClient *http.Client
	// callTimeout bounds every call except the long-poll wait itself.
	callTimeout time.Duration
	// bot is the template every call copies with its own transport.
	bot tgbotapi.BotAPI
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another Bot API server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithCallTimeout sets the default timeout for API calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var setLoggerOnce sync.Once

// NewClient creates a client for token. It makes no request, so the bot
// identity is only fetched by GetMe.
func NewClient(token string, opts ...Option) *Client {
	setLoggerOnce.Do(func() {
		_ = tgbotapi.SetLogger(botLogger{})
	})

	c := &Client{
		token:       token,
		baseURL:     DefaultAPIURL,
		httpClient:  &http.Client{},
		callTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.bot = tgbotapi.BotAPI{
		Token:  token,
		Debug:  logger.Level() <= zapcore.DebugLevel,
		Buffer: 100,
		Client: c.httpClient,
	}
	c.bot.SetAPIEndpoint(strings.ReplaceAll(c.baseURL, "%", "%%") + "/bot%s/%s")

	return c
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	var me tgbotapi.User

	err := c.call(ctx, "getMe", 0, func(bot *tgbotapi.BotAPI) (err error) {
		me, err = bot.GetMe()
		return err
	})
	if err != nil {
		return User{}, err
	}

	return fromAPIUser(me), nil
}

// SendMessage posts text to chatID with link previews disabled. A chatID that
// is not numeric is sent as a channel username such as "@lakecrew".
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(chatID, text)
	}

	msg.DisableWebPagePreview = true

	return c.call(ctx, "sendMessage", 0, func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Request(msg)
		return err
	})
}

// GetUpdates fetches pending updates starting at offset, waiting up to
// timeout for new ones to arrive. A zero timeout returns immediately.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	cfg := tgbotapi.UpdateConfig{
		Offset:         int(offset),
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message"},
	}

	var raw []tgbotapi.Update

	err := c.call(ctx, "getUpdates", timeout, func(bot *tgbotapi.BotAPI) (err error) {
		raw, err = bot.GetUpdates(cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, fromAPIUpdate(u))
	}

	return updates, nil
}

// SetWebhook asks Telegram to push updates to url, echoing secret in the
// X-Telegram-Bot-Api-Secret-Token header when it is not empty.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	// WebhookConfig has no secret_token field, so the parameters are built here.
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)

	if err := params.AddInterface("allowed_updates", []string{"message"}); err != nil {
		return fmt.Errorf("encode setWebhook request: %w", err)
	}

	return c.call(ctx, "setWebhook", 0, func(bot *tgbotapi.BotAPI) error {
		_, err := bot.MakeRequest("setWebhook", params)
		return err
	})
}

// DeleteWebhook removes any webhook so that GetUpdates can be used.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", 0, func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Request(tgbotapi.DeleteWebhookConfig{})
		return err
	})
}

// SetMyCommands publishes the command menu shown by Telegram clients.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	menu := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		menu = append(menu, tgbotapi.BotCommand{Command: cmd.Command, Description: cmd.Description})
	}

	return c.call(ctx, "setMyCommands", 0, func(bot *tgbotapi.BotAPI) error {
		_, err := bot.Request(tgbotapi.NewSetMyCommands(menu...))
		return err
	})
}

// call runs fn against a copy of the bot bound to a transport that carries
// ctx, since the library builds its requests without one. extra lengthens
// the deadline for long-poll requests.
func (c *Client) call(ctx context.Context, method string, extra time.Duration, fn func(*tgbotapi.BotAPI) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout+extra)
	defer cancel()

	transport := &boundTransport{ctx: ctx, client: c.httpClient}

	bot := c.bot
	bot.Client = transport

	err := fn(&bot)
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		description := apiErr.Message
		if description == "" {
			description = http.StatusText(transport.status)
		}

		return &APIError{Method: method, StatusCode: transport.status, Description: description}
	}

	if transport.status != 0 {
		return &APIError{Method: method, StatusCode: transport.status, Description: "invalid response: " + err.Error()}
	}

	// net/http errors quote the URL, and the URL carries the token.
	return fmt.Errorf("telegram %s: %w", method, redact(err, c.token))
}

// boundTransport sends the library's requests under one call's context and
// remembers the HTTP status of the response.
type boundTransport struct {
	ctx    context.Context //nolint:containedctx // Lives for a single call.
	client *http.Client
	status int
}

func (t *boundTransport) Do(req *http.Request) (*http.Response, error) {
	resp, err := t.client.Do(req.WithContext(t.ctx))
	if resp != nil {
		t.status = resp.StatusCode
	}

	return resp, err
}

// botLogger routes the library's debug output to zap.
type botLogger struct{}

func (botLogger) Println(v ...any) {
	logger.Logger().Named("telegram").Debug(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (botLogger) Printf(format string, v ...any) {
	logger.Logger().Named("telegram").Debugf(strings.TrimSuffix(format, "\n"), v...)
}

// redactedError hides the bot token that net/http embeds in URL errors.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}

	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<redacted>"), err: err}
}
