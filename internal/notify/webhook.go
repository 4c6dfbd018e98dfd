// Package notify posts import completion summaries to an external webhook.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/buslane/buslane/internal/domain"
	"github.com/go-resty/resty/v2"
)

// Notifier delivers the reconciliation summary of a completed import.
type Notifier interface {
	ImportCompleted(ctx context.Context, audit *domain.ImportAudit) error
}

// WebhookConfig holds webhook notifier configuration.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

// WebhookNotifier posts audit payloads to a configured HTTP endpoint.
// Delivery is best-effort; the caller logs failures and moves on.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(cfg *WebhookConfig) *WebhookNotifier {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.SetTimeout(timeout)

	return &WebhookNotifier{
		client: client,
		url:    cfg.URL,
	}
}

type webhookPayload struct {
	Event        string `json:"event"`
	SchemaID     string `json:"schema_id"`
	FileName     string `json:"file_name"`
	TotalRows    int    `json:"total_rows"`
	ImportedRows int    `json:"imported_rows"`
	SkippedRows  int    `json:"skipped_rows"`
	ErrorRows    int    `json:"error_rows"`
	Actor        string `json:"actor"`
	Timestamp    string `json:"timestamp"`
}

// ImportCompleted posts the audit record as a JSON payload.
func (n *WebhookNotifier) ImportCompleted(ctx context.Context, audit *domain.ImportAudit) error {
	payload := webhookPayload{
		Event:        "import.completed",
		SchemaID:     audit.SchemaID,
		FileName:     audit.FileName,
		TotalRows:    audit.TotalRows,
		ImportedRows: audit.ImportedRows,
		SkippedRows:  audit.SkippedRows,
		ErrorRows:    audit.ErrorRows,
		Actor:        audit.Actor,
		Timestamp:    audit.CreatedAt.UTC().Format(time.RFC3339),
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
