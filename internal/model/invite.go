package model

import (
	"time"

	"github.com/google/uuid"
)

type InviteRole string

const (
	RoleClient  InviteRole = "client"
	RoleCreator InviteRole = "creator"
	RoleAdmin   InviteRole = "admin"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusRevoked  InviteStatus = "revoked"
	InviteStatusAccepted InviteStatus = "accepted"
)

// Invite is a single-use (by default) credential granting account creation
// with a pre-assigned role. Rows are never hard-deleted; status only moves
// pending -> revoked or pending -> accepted.
type Invite struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code          string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Email         string       `gorm:"type:varchar(255);index;not null" json:"email"`
	Role          InviteRole   `gorm:"type:varchar(16);not null;default:'client'" json:"role"`
	Status        InviteStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	UsesAllowed   int          `gorm:"not null;default:1" json:"uses_allowed"`
	UsesRemaining int          `gorm:"not null;default:1" json:"uses_remaining"`
	ExpiresAt     time.Time    `gorm:"not null" json:"expires_at"`
	Note          string       `gorm:"type:text" json:"note,omitempty"`
	Token         string       `gorm:"type:varchar(64);uniqueIndex" json:"token,omitempty"`
	CreatedBy     uuid.UUID    `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (Invite) TableName() string { return "invites" }

func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InviteRedemption is the audit row written when an invite is accepted.
type InviteRedemption struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InviteID  uuid.UUID `gorm:"type:uuid;not null;index" json:"invite_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	IP        string    `gorm:"type:varchar(64)" json:"ip"`
	UserAgent string    `gorm:"type:varchar(512)" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func (InviteRedemption) TableName() string { return "invite_redemptions" }
