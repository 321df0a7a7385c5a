package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tdiorio2323/cabana/internal/model"
)

type pgWebhookEventRepository struct {
	db *gorm.DB
}

func NewPGWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &pgWebhookEventRepository{db: db}
}

func (r *pgWebhookEventRepository) Exists(ctx context.Context, provider, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *pgWebhookEventRepository) Create(ctx context.Context, event *model.WebhookEvent) error {
	err := r.db.WithContext(ctx).Create(event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}
