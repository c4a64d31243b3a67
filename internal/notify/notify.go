// internal/notify/notify.go
//
// Best-effort admin notifications.
//
// Context
// -------
// After a contact message is stored, the hosted backend's notification
// function is invoked so an admin hears about it.  The call is a side
// action: callers log a failure and carry on, the user never sees it.
//
// Two implementations:
//
//   - Webhook  posts the event as JSON to a function URL, optionally with a
//     bearer key.
//   - Log      writes the event to the logger.  Used when no URL is set.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Event is one notification payload.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	SentAt  time.Time      `json:"sent_at"`
}

// Notifier delivers one event.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Webhook posts events to URL.
type Webhook struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

// NewWebhook returns a Webhook with a short client timeout.
func NewWebhook(url, apiKey string) *Webhook {
	return &Webhook{URL: url, APIKey: apiKey, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

func (w *Webhook) Notify(ctx context.Context, ev Event) error {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.APIKey)
	}

	resp, err := w.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("notify %s: %w", ev.Type, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify %s: status %d", ev.Type, resp.StatusCode)
	}
	return nil
}

// Log writes events to a zap logger instead of delivering them.
type Log struct{ L *zap.Logger }

func (l Log) Notify(_ context.Context, ev Event) error {
	lg := l.L
	if lg == nil {
		lg = zap.L()
	}
	lg.Info("notification (no webhook configured)",
		zap.String("type", ev.Type),
		zap.Int("fields", len(ev.Payload)))
	return nil
}

// New picks Webhook when url is set, Log otherwise.
func New(url, apiKey string, log *zap.Logger) Notifier {
	if url == "" {
		return Log{L: log}
	}
	return NewWebhook(url, apiKey)
}
