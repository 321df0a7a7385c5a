package model

import (
	"time"

	"github.com/google/uuid"
)

// RateLimitRecord is one entry in the append-only event log backing the
// sliding-window limiter. Old rows are removed by a periodic cleanup job.
type RateLimitRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Key       string    `gorm:"type:varchar(255);not null;index:idx_rate_limits_key_created,priority:1" json:"key"`
	CreatedAt time.Time `gorm:"not null;index:idx_rate_limits_key_created,priority:2" json:"created_at"`
}

func (RateLimitRecord) TableName() string { return "rate_limits" }
