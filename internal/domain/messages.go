package domain

import (
	"encoding/json"
	"time"
)

// Sync job statuses carried in the message body
const (
	SyncStatusStart      = "start"
	SyncStatusProcessing = "processing"
)

// SyncJob is the body of an ingest.{tenantId}.{resource} message.
// An empty Cursor means the first page.
type SyncJob struct {
	Status string `json:"status"`
	Cursor string `json:"cursor,omitempty"`
}

// WebhookEvent is the envelope published for every verified webhook
type WebhookEvent struct {
	ShopDomain string          `json:"shopDomain"`
	Topic      string          `json:"topic"`
	WebhookID  string          `json:"webhookId,omitempty"`
	Data       json.RawMessage `json:"data"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// IngestionEvent reports the outcome of one processed bus message to live subscribers
type IngestionEvent struct {
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	ShopDomain string    `json:"shopDomain,omitempty"`
	TenantID   string    `json:"tenantId,omitempty"`
	Resource   string    `json:"resource,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Outcome    string    `json:"outcome"`
	Records    int       `json:"records"`
	Cursor     string    `json:"cursor,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
	At         time.Time `json:"at"`
}
