package model

import (
	"time"

	"github.com/google/uuid"
)

// VipCode is a multi-use credential, structurally similar to an invite but
// redeemed through its own flow and not tied to an email.
type VipCode struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Role          InviteRole `gorm:"type:varchar(16);not null;default:'client'" json:"role"`
	UsesAllowed   int        `gorm:"not null;default:1" json:"uses_allowed"`
	UsesRemaining int        `gorm:"not null;default:1" json:"uses_remaining"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Metadata      string     `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (VipCode) TableName() string { return "vip_codes" }

func (v *VipCode) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && now.After(*v.ExpiresAt)
}

type VipRedemption struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code      string    `gorm:"type:varchar(64);not null;index" json:"code"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	IP        string    `gorm:"type:varchar(64)" json:"ip"`
	UserAgent string    `gorm:"type:varchar(512)" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func (VipRedemption) TableName() string { return "vip_redemptions" }
