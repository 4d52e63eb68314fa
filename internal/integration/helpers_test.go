package integration

import (
	"net"
	"net/http"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// reservePort returns a free local address for a server started later.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// clearEnv blanks every variable config.Load reads.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "NOAA_OMR_URL", "STATION_LABEL",
		"LOG_LEVEL", "TELEGRAM_API_URL", "RENDER_EXTERNAL_URL", "WEBHOOK_URL",
		"WEBHOOK_SECRET", "PORT",
	} {
		t.Setenv(key, "")
	}
}

// apiCall is one request received by the Bot API stub.
type apiCall struct {
	Method  string
	Payload map[string]string
}

// botAPI is a Bot API stub that accepts every call and returns no updates.
type botAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (b *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)

	_ = r.ParseForm()

	payload := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		payload[key] = r.PostForm.Get(key)
	}

	b.mu.Lock()
	b.calls = append(b.calls, apiCall{Method: method, Payload: payload})
	b.mu.Unlock()

	switch method {
	case "getUpdates":
		select {
		case <-r.Context().Done():
		case <-time.After(20 * time.Millisecond):
		}

		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":7,"is_bot":true,"first_name":"Shore","username":"ShoreTempBot"}}`))
	case "sendMessage":
		if payload["chat_id"] == "blocked" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))

			return
		}

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

// sent returns chat id and text of every successful sendMessage, in order.
func (b *botAPI) sent() [][2]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out [][2]string

	for _, c := range b.calls {
		if c.Method != "sendMessage" || c.Payload["chat_id"] == "blocked" {
			continue
		}

		out = append(out, [2]string{c.Payload["chat_id"], c.Payload["text"]})
	}

	return out
}

// call returns the payload of the first call to method.
func (b *botAPI) call(method string) (map[string]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.calls {
		if c.Method == method {
			return c.Payload, true
		}
	}

	return nil, false
}
