package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	inbound "github.com/oshokin/shoretemp/internal/bot"
	"github.com/oshokin/shoretemp/internal/config"
	"github.com/oshokin/shoretemp/internal/service/bot"
)

const tempUpdate = `{"update_id":9,"message":{"message_id":4,"date":0,` +
	`"chat":{"id":42,"type":"private","first_name":"Ann"},"text":"/temp"}}`

// TestBot_WebhookAnswersTemp registers the webhook, accepts a pushed /temp and
// replies to the sender, then shuts down cleanly.
func TestBot_WebhookAnswersTemp(t *testing.T) {
	clearEnv(t)

	noaa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("CHICAGO SHORE............54\n"))
	}))
	defer noaa.Close()

	api := &botAPI{}
	apiServer := httptest.NewServer(api)
	defer apiServer.Close()

	addr := reservePort(t)
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		BotToken: "test-token",
		Report:   config.ReportConfig{URL: noaa.URL},
		Telegram: config.TelegramConfig{APIURL: apiServer.URL},
		Bot: config.BotConfig{
			Mode:          config.ModeAuto,
			WebhookURL:    "https://shoretemp.example.com",
			WebhookSecret: "s3cret",
			ListenAddress: addr,
		},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- bot.Run(ctx, &bot.Options{ConfigPath: cfgPath})
	}()

	base := "http://" + addr

	// Wait for the listener.
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	registered, ok := api.call("setWebhook")
	require.True(t, ok)
	require.Equal(t, "https://shoretemp.example.com/webhook", registered["url"])
	require.Equal(t, "s3cret", registered["secret_token"])

	_, ok = api.call("setMyCommands")
	require.True(t, ok)

	req, err := http.NewRequest(http.MethodPost, base+"/webhook", strings.NewReader(tempUpdate))
	require.NoError(t, err)
	req.Header.Set(inbound.SecretHeader, "s3cret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(api.sent()) == 2
	}, 5*time.Second, 20*time.Millisecond)

	require.Equal(t, [][2]string{
		{"42", inbound.FetchingText},
		{"42", "Chicago Shore water temp: 54°F — good time for the lake!"},
	}, api.sent())

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Contains(t, string(body), `shoretemp_commands_total{command="temp"} 1`)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("bot did not stop")
	}
}

// TestBot_ListenFailure returns an error when the HTTP listener cannot start.
func TestBot_ListenFailure(t *testing.T) {
	clearEnv(t)

	api := &botAPI{}
	apiServer := httptest.NewServer(api)
	defer apiServer.Close()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		BotToken: "test-token",
		Telegram: config.TelegramConfig{APIURL: apiServer.URL},
		Bot: config.BotConfig{
			Mode:          config.ModeWebhook,
			WebhookURL:    "https://shoretemp.example.com",
			ListenAddress: "256.0.0.1:bad",
		},
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := bot.Run(ctx, &bot.Options{ConfigPath: cfgPath})
	require.ErrorContains(t, err, "listen on 256.0.0.1:bad")
}
