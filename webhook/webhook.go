// Package webhook notifies an external endpoint after a record is stored.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/redplanet/config"
	"github.com/use-agent/redplanet/models"
)

// EventScraped is sent after every successful scrape-and-store.
const EventScraped = "mars.scraped"

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Redplanet-Signature"

// Event is the payload sent to the webhook endpoint.
type Event struct {
	Type      string           `json:"type"`
	Timestamp int64            `json:"timestamp"`
	Data      *models.MarsData `json:"data"`

	// NewsChanged reports whether the headline differs from the record it
	// replaced. It is true for the first record.
	NewsChanged bool `json:"news_changed"`
}

// Sender posts events to one URL. A nil *Sender is valid and sends nothing.
type Sender struct {
	url    string
	secret string
	client *http.Client
}

// New returns a Sender for cfg, or nil when no URL is configured.
func New(cfg config.WebhookConfig) *Sender {
	if cfg.URL == "" {
		return nil
	}
	return &Sender{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// NewEvent builds the scraped event for data, comparing its headline with
// the previous record (nil if there was none).
func NewEvent(prev, data *models.MarsData) *Event {
	changed := prev == nil ||
		prev.NewsTitle != data.NewsTitle ||
		prev.NewsParagraph != data.NewsParagraph
	return &Event{
		Type:        EventScraped,
		Timestamp:   data.LastModified.Unix(),
		Data:        data,
		NewsChanged: changed,
	}
}

// Deliver sends an event synchronously. The request body is signed with
// HMAC-SHA256 if a secret is configured.
func (s *Sender) Deliver(ctx context.Context, event *Event) error {
	if s == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Redplanet-Webhook/1.0")

	if s.secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(s.secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends an event in the background. Failures are logged and
// not retried.
func (s *Sender) DeliverAsync(event *Event) {
	if s == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout+time.Second)
		defer cancel()
		if err := s.Deliver(ctx, event); err != nil {
			slog.Warn("webhook delivery failed", "url", s.url, "event", event.Type, "error", err)
			return
		}
		slog.Info("webhook delivered", "url", s.url, "event", event.Type, "news_changed", event.NewsChanged)
	}()
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
