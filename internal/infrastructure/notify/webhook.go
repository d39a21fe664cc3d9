// Package notify delivers captured leads to an outbound webhook. Delivery is
// fire-and-forget from the request's point of view; only the dispatcher's
// workers ever wait on it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/salonkit/leadgate/internal/core/domain"
)

const deliveryTimeout = 10 * time.Second

// WebhookNotifier POSTs lead-captured events as JSON to a single URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

func NewWebhookNotifier(url string, logger zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: deliveryTimeout},
		logger: logger,
	}
}

type leadEvent struct {
	Event string      `json:"event"`
	Lead  domain.Lead `json:"lead"`
}

// Notify delivers one lead.captured event. Non-2xx responses count as
// delivery failures.
func (n *WebhookNotifier) Notify(ctx context.Context, lead domain.Lead) error {
	payload, err := json.Marshal(leadEvent{Event: "lead.captured", Lead: lead})
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: webhook returned %d", resp.StatusCode)
	}

	n.logger.Debug().Str("tenant", lead.Tenant).Str("lead_id", lead.ID).Msg("lead notification delivered")
	return nil
}
