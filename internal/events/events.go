// Package events publishes domain events for downstream consumers such as the mailer.
package events

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Event types.
const (
	TypeDownloadRequested = "download.requested"
	TypeDownloadConfirmed = "download.confirmed"
)

// Publisher delivers one event. key selects the partition.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload []byte) error
}

// DownloadRequested is emitted after a lead asked for a gated resource.
// Consumers mail DownloadURL to Email.
type DownloadRequested struct {
	LeadID      uuid.UUID `json:"lead_id"`
	ResourceID  uuid.UUID `json:"resource_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DownloadConfirmed is emitted after a download link was used.
type DownloadConfirmed struct {
	LeadID          uuid.UUID `json:"lead_id"`
	ResourceID      uuid.UUID `json:"resource_id"`
	LeadConfirmed   bool      `json:"lead_confirmed"`
	DownloadCounted bool      `json:"download_counted"`
	At              time.Time `json:"at"`
}
