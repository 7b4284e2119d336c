package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// HTTPDoer is the subset of *http.Client used by WebhookEmitter.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookEmitter POSTs each event as JSON to a fixed URL.
type WebhookEmitter struct {
	client HTTPDoer
	url    string
}

// NewWebhookEmitter builds an emitter. With a nil client it tries an ID token
// client for the target audience and falls back to a plain client.
func NewWebhookEmitter(client HTTPDoer, url string) (*WebhookEmitter, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("webhook url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), url)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &WebhookEmitter{client: client, url: url}, nil
}

// Emit posts the event and fails on any non-2xx response.
func (w *WebhookEmitter) Emit(ctx context.Context, event Event) error {
	event = event.withDefaults()
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", event.Type)
	req.Header.Set("X-Event-ID", event.ID.String())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
