package model

import (
	"time"

	"github.com/google/uuid"
)

type DepositStatus string

const (
	DepositStatusPending DepositStatus = "pending"
	DepositStatusPaid    DepositStatus = "paid"
	DepositStatusFailed  DepositStatus = "failed"
)

type ContractStatus string

const (
	ContractStatusPending ContractStatus = "pending"
	ContractStatusSigned  ContractStatus = "signed"
)

type VettingStatus string

const (
	VettingStatusPending  VettingStatus = "pending"
	VettingStatusApproved VettingStatus = "approved"
	VettingStatusRejected VettingStatus = "rejected"
)

// Booking carries the deposit, contract and vetting state mutated by the
// provider webhooks. The wider booking workflow lives in the admin dashboard;
// this service only flips the statuses below.
type Booking struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email              string         `gorm:"type:varchar(255);index;not null" json:"email"`
	PaymentIntentID    string         `gorm:"type:varchar(191);uniqueIndex" json:"payment_intent_id,omitempty"`
	DepositStatus      DepositStatus  `gorm:"type:varchar(16);not null;default:'pending'" json:"deposit_status"`
	ContractEnvelopeID string         `gorm:"type:varchar(191);uniqueIndex" json:"contract_envelope_id,omitempty"`
	ContractStatus     ContractStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"contract_status"`
	IdentityStatus     VettingStatus  `gorm:"type:varchar(16);not null;default:'pending'" json:"identity_status"`
	ScreeningStatus    VettingStatus  `gorm:"type:varchar(16);not null;default:'pending'" json:"screening_status"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }
