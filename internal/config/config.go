package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting consumed by the shoretemp binaries.
type Config struct {
	// BotToken is the Telegram bot credential.
	BotToken string `yaml:"bot_token"`
	// ChatIDs are the recipients of scheduled notifications.
	ChatIDs []string `yaml:"chat_ids"`
	// Timeout bounds every single network call.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Report describes where the temperature comes from.
	Report ReportConfig `yaml:"report"`
	// Telegram holds platform endpoint settings.
	Telegram TelegramConfig `yaml:"telegram"`
	// Bot configures the interactive mode.
	Bot BotConfig `yaml:"bot"`
}

// ReportConfig describes the text report and how hard to try fetching it.
type ReportConfig struct {
	// URL of the marine weather report.
	URL string `yaml:"url"`
	// Station is the label searched for inside the report.
	Station string `yaml:"station"`
	// Attempts is the total number of fetch attempts.
	Attempts int `yaml:"attempts"`
	// RetryDelay is the pause before the second attempt.
	RetryDelay time.Duration `yaml:"retry_delay"`
	// RetryMultiplier scales the pause after each further failure.
	RetryMultiplier float64 `yaml:"retry_multiplier"`
}

// TelegramConfig holds Bot API endpoint settings.
type TelegramConfig struct {
	// APIURL is the Bot API base URL.
	APIURL string `yaml:"api_url"`
}

// BotConfig configures how the interactive bot receives commands.
type BotConfig struct {
	// Mode is auto, polling or webhook.
	Mode string `yaml:"mode"`
	// WebhookURL is the public base URL; the webhook path is appended to it.
	WebhookURL string `yaml:"webhook_url"`
	// WebhookPath is the HTTP path Telegram posts updates to.
	WebhookPath string `yaml:"webhook_path"`
	// WebhookSecret is echoed by Telegram in X-Telegram-Bot-Api-Secret-Token.
	WebhookSecret string `yaml:"webhook_secret"`
	// ListenAddress is where the HTTP surface listens. Empty disables it in polling mode.
	ListenAddress string `yaml:"listen_addr"`
	// PollTimeout is the long-poll duration passed to getUpdates.
	PollTimeout time.Duration `yaml:"poll_timeout"`
	// MaxConcurrent bounds the number of updates handled at once.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Bot modes.
const (
	ModeAuto    = "auto"
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

const (
	// DefaultConfigFilename is read when no --config flag is given; it may be absent.
	DefaultConfigFilename = "shoretemp.yaml"

	// DefaultReportURL is the NWS Chicago marine weather (OMR) product page.
	DefaultReportURL = "https://forecast.weather.gov/product.php?issuedby=lot&product=omr&site=lot"

	// DefaultStation is the shore station reported on.
	DefaultStation = "Chicago Shore"

	// DefaultTimeout bounds each network call.
	DefaultTimeout = 10 * time.Second

	// DefaultAttempts is one try plus two retries.
	DefaultAttempts = 3

	// DefaultRetryDelay is the pause between fetch attempts.
	DefaultRetryDelay = 2 * time.Second

	// DefaultTelegramAPIURL is the public Bot API endpoint.
	DefaultTelegramAPIURL = "https://api.telegram.org"

	// DefaultWebhookPath is the path Telegram posts updates to.
	DefaultWebhookPath = "/webhook"

	// DefaultWebhookPort is used when PORT is not set in webhook mode.
	DefaultWebhookPort = "8443"

	// DefaultPollTimeout is the getUpdates long-poll duration.
	DefaultPollTimeout = 30 * time.Second

	// DefaultMaxConcurrent bounds concurrent update handlers.
	DefaultMaxConcurrent = 8

	// filePermissions restricts saved settings to the owner.
	filePermissions = 0o600

	// maxTimeout caps Timeout so a slow call cannot stall a handler for long.
	maxTimeout = time.Minute
)

var (
	// ErrBotTokenRequired is returned when no bot credential is configured.
	ErrBotTokenRequired = errors.New("bot token must be provided (TELEGRAM_BOT_TOKEN)")
	// ErrRecipientsRequired is returned when scheduled mode has nobody to notify.
	ErrRecipientsRequired = errors.New("at least one chat id must be provided (TELEGRAM_CHAT_ID)")
	// errConfigIsNotSet is returned when a nil configuration is validated.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// Load reads path (or the default file), applies environment overrides,
// fills defaults and validates the result. A missing default file is not an
// error; a missing explicitly named file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	cfg := new(Config)

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Environment-only configuration.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnv(cfg, os.Getenv)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save validates cfg and writes it to path (or the default file) readable
// only by the owner, since it carries the bot token.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, filePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// applyEnv overrides file values with non-empty environment variables.
func applyEnv(cfg *Config, getenv func(string) string) {
	env := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	if v := env("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}

	if v := env("TELEGRAM_CHAT_ID"); v != "" {
		cfg.ChatIDs = SplitList(v)
	}

	if v := env("NOAA_OMR_URL"); v != "" {
		cfg.Report.URL = v
	}

	if v := env("STATION_LABEL"); v != "" {
		cfg.Report.Station = v
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := env("TELEGRAM_API_URL"); v != "" {
		cfg.Telegram.APIURL = v
	}

	// RENDER_EXTERNAL_URL is set by the hosting platform; WEBHOOK_URL wins when both exist.
	if v := env("RENDER_EXTERNAL_URL"); v != "" {
		cfg.Bot.WebhookURL = v
	}

	if v := env("WEBHOOK_URL"); v != "" {
		cfg.Bot.WebhookURL = v
	}

	if v := env("WEBHOOK_SECRET"); v != "" {
		cfg.Bot.WebhookSecret = v
	}

	if v := env("PORT"); v != "" {
		cfg.Bot.ListenAddress = ":" + v
	}
}

// Validate fills defaults and checks settings shared by every mode.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	if cfg.BotToken == "" {
		return ErrBotTokenRequired
	}

	cfg.ChatIDs = SplitList(strings.Join(cfg.ChatIDs, ","))

	applyDefaults(cfg)

	if cfg.Timeout > maxTimeout {
		return fmt.Errorf("timeout %s exceeds %s", cfg.Timeout, maxTimeout)
	}

	if cfg.Report.Attempts < 1 {
		return fmt.Errorf("report attempts must be at least 1, got %d", cfg.Report.Attempts)
	}

	if cfg.Report.RetryDelay < 0 {
		return fmt.Errorf("report retry delay must not be negative, got %s", cfg.Report.RetryDelay)
	}

	if err := validateURL(cfg.Report.URL); err != nil {
		return fmt.Errorf("invalid report URL: %w", err)
	}

	if err := validateURL(cfg.Telegram.APIURL); err != nil {
		return fmt.Errorf("invalid telegram API URL: %w", err)
	}

	switch cfg.Bot.Mode {
	case ModeAuto, ModePolling, ModeWebhook:
	default:
		return fmt.Errorf("unknown bot mode %q (want %s, %s or %s)", cfg.Bot.Mode, ModeAuto, ModePolling, ModeWebhook)
	}

	if cfg.Bot.WebhookURL != "" {
		if err := validateURL(cfg.Bot.WebhookURL); err != nil {
			return fmt.Errorf("invalid webhook URL: %w", err)
		}
	}

	if !strings.HasPrefix(cfg.Bot.WebhookPath, "/") {
		return fmt.Errorf("webhook path %q must start with /", cfg.Bot.WebhookPath)
	}

	if cfg.Bot.MaxConcurrent < 1 {
		return fmt.Errorf("bot max concurrent must be at least 1, got %d", cfg.Bot.MaxConcurrent)
	}

	return nil
}

// RequireRecipients reports whether scheduled mode has anyone to notify.
func (c *Config) RequireRecipients() error {
	if len(c.ChatIDs) == 0 {
		return ErrRecipientsRequired
	}

	return nil
}

// WebhookEnabled reports whether the bot should receive updates by webhook.
// Auto mode picks webhook whenever a public URL is known.
func (c *Config) WebhookEnabled() bool {
	switch c.Bot.Mode {
	case ModeWebhook:
		return true
	case ModePolling:
		return false
	default:
		return c.Bot.WebhookURL != ""
	}
}

// WebhookEndpoint returns the full URL registered with Telegram.
func (c *Config) WebhookEndpoint() string {
	return strings.TrimRight(c.Bot.WebhookURL, "/") + c.Bot.WebhookPath
}

// SplitList splits a comma-separated list, trims entries, drops empty ones
// and removes duplicates while keeping first-seen order.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if _, ok := seen[part]; ok {
			continue
		}

		seen[part] = struct{}{}
		result = append(result, part)
	}

	return result
}

func applyDefaults(cfg *Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Report.URL == "" {
		cfg.Report.URL = DefaultReportURL
	}

	if cfg.Report.Station == "" {
		cfg.Report.Station = DefaultStation
	}

	if cfg.Report.Attempts == 0 {
		cfg.Report.Attempts = DefaultAttempts
	}

	if cfg.Report.RetryDelay == 0 {
		cfg.Report.RetryDelay = DefaultRetryDelay
	}

	if cfg.Report.RetryMultiplier <= 0 {
		cfg.Report.RetryMultiplier = 1
	}

	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = DefaultTelegramAPIURL
	}

	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = ModeAuto
	}

	if cfg.Bot.WebhookPath == "" {
		cfg.Bot.WebhookPath = DefaultWebhookPath
	}

	if cfg.Bot.ListenAddress == "" && cfg.WebhookEnabled() {
		cfg.Bot.ListenAddress = ":" + DefaultWebhookPort
	}

	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = DefaultPollTimeout
	}

	if cfg.Bot.MaxConcurrent == 0 {
		cfg.Bot.MaxConcurrent = DefaultMaxConcurrent
	}
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}

	return nil
}
