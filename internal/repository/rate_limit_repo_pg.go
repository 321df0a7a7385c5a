package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tdiorio2323/cabana/internal/model"
)

type pgRateLimitRepository struct {
	db *gorm.DB
}

func NewPGRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &pgRateLimitRepository{db: db}
}

func (r *pgRateLimitRepository) InsertIfUnder(ctx context.Context, key string, at, since time.Time, max int) (bool, error) {
	// Conditional insert in a single statement so two concurrent checks for
	// the same key cannot both observe "under limit" before either writes.
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO rate_limits (id, "key", created_at)
		 SELECT gen_random_uuid(), ?, ?
		 WHERE (SELECT count(*) FROM rate_limits WHERE "key" = ? AND created_at >= ?) < ?`,
		key, at, key, since, max,
	)
	return res.RowsAffected > 0, res.Error
}

func (r *pgRateLimitRepository) CountSince(ctx context.Context, key string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RateLimitRecord{}).
		Where(`"key" = ? AND created_at >= ?`, key, since).
		Count(&count).Error
	return count, err
}

func (r *pgRateLimitRepository) OldestSince(ctx context.Context, key string, since time.Time) (time.Time, error) {
	var record model.RateLimitRecord
	err := r.db.WithContext(ctx).
		Where(`"key" = ? AND created_at >= ?`, key, since).
		Order("created_at ASC").
		First(&record).Error
	if err != nil {
		return time.Time{}, translateNotFound(err)
	}
	return record.CreatedAt, nil
}

func (r *pgRateLimitRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.RateLimitRecord{})
	return res.RowsAffected, res.Error
}
