package model

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is the idempotency ledger: exactly one row per external event
// id, inserted before the domain mutation so retried deliveries short-circuit.
type WebhookEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Provider    string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_webhook_events_provider_event,priority:1" json:"provider"`
	EventID     string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_provider_event,priority:2" json:"event_id"`
	EventType   string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
