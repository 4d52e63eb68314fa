package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"sync"

	"github.com/oshokin/shoretemp/internal/logger"
	"github.com/oshokin/shoretemp/internal/telegram"
)

// SecretHeader carries the secret token Telegram echoes on every webhook call.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateSize caps the body of a pushed update.
const maxUpdateSize = 1 << 20

// WebhookClient is the part of the Bot API used by Webhook.
type WebhookClient interface {
	SetWebhook(ctx context.Context, url, secret string) error
}

// Webhook is a Source fed by Telegram's pushed calls. It is also the
// http.Handler mounted on the webhook path.
type Webhook struct {
	// client registers the webhook.
	client WebhookClient
	// url is the public endpoint registered with Telegram.
	url string
	// secret must match SecretHeader when not empty.
	secret string
	// queue hands accepted updates to the consumer.
	queue chan telegram.Update
	// done is closed once the consumer of Updates has stopped.
	done chan struct{}
	// stopOnce guards closing done.
	stopOnce sync.Once
}

// NewWebhook creates a Webhook that buffers up to buffer updates.
func NewWebhook(client WebhookClient, url, secret string, buffer int) *Webhook {
	return &Webhook{
		client: client,
		url:    url,
		secret: secret,
		queue:  make(chan telegram.Update, max(buffer, 0)),
		done:   make(chan struct{}),
	}
}

// Prepare registers the public endpoint with Telegram.
func (w *Webhook) Prepare(ctx context.Context) error {
	return w.client.SetWebhook(ctx, w.url, w.secret)
}

// ServeHTTP accepts one update. It answers 503 when the update could not be
// queued before the request ended or the consumer stopped, so Telegram
// delivers it again later.
func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.Header().Set("Allow", http.MethodPost)
		http.Error(rw, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)

		return
	}

	if w.secret != "" &&
		subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(w.secret)) != 1 {
		logger.WarnKV(r.Context(), "Rejected webhook call with a wrong secret", "remote_addr", r.RemoteAddr)
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return
	}

	var update telegram.Update
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateSize)).Decode(&update); err != nil {
		http.Error(rw, "invalid update", http.StatusBadRequest)
		return
	}

	select {
	case <-w.done:
		unavailable(rw)
		return
	default:
	}

	select {
	case w.queue <- update:
		rw.WriteHeader(http.StatusOK)
	case <-w.done:
		unavailable(rw)
	case <-r.Context().Done():
		unavailable(rw)
	}
}

func unavailable(rw http.ResponseWriter) {
	http.Error(rw, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
}

// Updates yields queued updates until ctx is done. Once ctx is done the
// Webhook refuses further calls right away.
func (w *Webhook) Updates(ctx context.Context) iter.Seq[telegram.Update] {
	return func(yield func(telegram.Update) bool) {
		for {
			select {
			case <-ctx.Done():
				w.stopOnce.Do(func() { close(w.done) })

				return
			case u := <-w.queue:
				if !yield(u) {
					return
				}
			}
		}
	}
}
