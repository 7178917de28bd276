// Package notify posts deal lifecycle events to an external webhook so the
// desktop and dashboard front ends can refresh without polling.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// StatusEvent is the payload posted on every deal status change.
type StatusEvent struct {
	DealID     string    `json:"sauda_id"`
	Status     string    `json:"status"`
	Trigger    string    `json:"trigger"` // "shipment" or "manual"
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier publishes deal status events. Delivery is best effort; callers
// log failures and move on.
type Notifier interface {
	PublishStatusChange(ctx context.Context, event StatusEvent) error
}

// WebhookNotifier is a resty-backed Notifier.
type WebhookNotifier struct {
	httpClient *resty.Client
}

// NewWebhookNotifier builds a notifier targeting the given webhook URL.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(webhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	return &WebhookNotifier{httpClient: restyClient}
}

// PublishStatusChange posts the event to the configured webhook.
func (n *WebhookNotifier) PublishStatusChange(ctx context.Context, event StatusEvent) error {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post("")
	if err != nil {
		return fmt.Errorf("post status event: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("status webhook rejected event: status=%d", resp.StatusCode())
	}
	return nil
}

// Noop discards every event; used when no webhook URL is configured.
type Noop struct{}

// PublishStatusChange does nothing.
func (Noop) PublishStatusChange(context.Context, StatusEvent) error { return nil }
