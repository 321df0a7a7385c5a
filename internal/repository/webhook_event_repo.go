package repository

import (
	"context"

	"github.com/tdiorio2323/cabana/internal/model"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, provider, eventID string) (bool, error)
	// Create inserts a ledger row. Returns ErrConflict when the same
	// (provider, event_id) pair was already recorded, which callers treat as
	// a duplicate delivery.
	Create(ctx context.Context, event *model.WebhookEvent) error
}
