package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdiorio2323/cabana/internal/model"
)

type pgBookingRepository struct {
	db *gorm.DB
}

func NewPGBookingRepository(db *gorm.DB) BookingRepository {
	return &pgBookingRepository{db: db}
}

func (r *pgBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *pgBookingRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&booking).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &booking, nil
}

func (r *pgBookingRepository) SetDepositStatus(ctx context.Context, paymentIntentID string, status model.DepositStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("payment_intent_id = ?", paymentIntentID).
		Update("deposit_status", status)
	return res.RowsAffected, res.Error
}

func (r *pgBookingRepository) SetContractStatus(ctx context.Context, envelopeID string, status model.ContractStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("contract_envelope_id = ?", envelopeID).
		Update("contract_status", status)
	return res.RowsAffected, res.Error
}

func (r *pgBookingRepository) SetIdentityStatus(ctx context.Context, bookingID uuid.UUID, status model.VettingStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", bookingID).
		Update("identity_status", status)
	return res.RowsAffected, res.Error
}

func (r *pgBookingRepository) SetScreeningStatus(ctx context.Context, bookingID uuid.UUID, status model.VettingStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", bookingID).
		Update("screening_status", status)
	return res.RowsAffected, res.Error
}
