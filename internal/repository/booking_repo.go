package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tdiorio2323/cabana/internal/model"
)

// BookingRepository covers only the status flips driven by provider webhooks.
// The Set* methods return the number of rows matched so callers can surface a
// retryable error when the referenced booking does not exist.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Booking, error)
	SetDepositStatus(ctx context.Context, paymentIntentID string, status model.DepositStatus) (int64, error)
	SetContractStatus(ctx context.Context, envelopeID string, status model.ContractStatus) (int64, error)
	SetIdentityStatus(ctx context.Context, bookingID uuid.UUID, status model.VettingStatus) (int64, error)
	SetScreeningStatus(ctx context.Context, bookingID uuid.UUID, status model.VettingStatus) (int64, error)
}
