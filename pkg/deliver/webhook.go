package deliver

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Webhook posts deliveries to a generic HTTP endpoint. The receiving side
// (typically a bot bridge) forwards them into the chat session.
type Webhook struct {
	client *http.Client
	url    string
	secret string
}

// NewWebhook creates a webhook deliverer. secret enables HMAC signing when
// non-empty.
func NewWebhook(url, secret string) *Webhook {
	return &Webhook{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
		secret: secret,
	}
}

func (w *Webhook) Name() string { return "webhook" }

type webhookPayload struct {
	Session      string   `json:"session"`
	Reason       string   `json:"reason"`
	Text         string   `json:"text,omitempty"`
	ImageBase64  string   `json:"image_base64,omitempty"`
	CoversBase64 []string `json:"covers_base64,omitempty"`
}

func (w *Webhook) Send(ctx context.Context, session string, msg *Message) error {
	p := webhookPayload{
		Session: session,
		Reason:  msg.Reason,
		Text:    msg.Text,
	}
	if msg.ImagePath != "" {
		raw, err := os.ReadFile(msg.ImagePath)
		if err != nil {
			return fmt.Errorf("read report image: %w", err)
		}
		p.ImageBase64 = base64.StdEncoding.EncodeToString(raw)
	}
	for _, path := range msg.CoverPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read cover image: %w", err)
		}
		p.CoversBase64 = append(p.CoversBase64, base64.StdEncoding.EncodeToString(raw))
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hotdaily/1.0")

	// HMAC signature for verification.
	if w.secret != "" {
		mac := hmac.New(sha256.New, []byte(w.secret))
		mac.Write(body)
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("X-Signature-256", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}

	return nil
}
