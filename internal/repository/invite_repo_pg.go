package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tdiorio2323/cabana/internal/model"
)

type pgInviteRepository struct {
	db *gorm.DB
}

func NewPGInviteRepository(db *gorm.DB) InviteRepository {
	return &pgInviteRepository{db: db}
}

func (r *pgInviteRepository) Create(ctx context.Context, invite *model.Invite) error {
	err := r.db.WithContext(ctx).Create(invite).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *pgInviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invite).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &invite, nil
}

func (r *pgInviteRepository) GetByCode(ctx context.Context, code string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &invite, nil
}

func (r *pgInviteRepository) LatestByEmail(ctx context.Context, email string) (*model.Invite, error) {
	var invite model.Invite
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		Order("created_at DESC").
		First(&invite).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &invite, nil
}

func (r *pgInviteRepository) HasPending(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Invite{}).
		Where("lower(email) = lower(?) AND status = ?", email, model.InviteStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *pgInviteRepository) RevokePending(ctx context.Context, id *uuid.UUID, email string) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Invite{}).
		Where("status = ?", model.InviteStatusPending)

	switch {
	case id != nil && email != "":
		q = q.Where("id = ? OR lower(email) = lower(?)", *id, email)
	case id != nil:
		q = q.Where("id = ?", *id)
	default:
		q = q.Where("lower(email) = lower(?)", email)
	}

	res := q.Update("status", model.InviteStatusRevoked)
	return res.RowsAffected, res.Error
}

func (r *pgInviteRepository) ConsumeUse(ctx context.Context, id uuid.UUID) (bool, error) {
	// Single conditional UPDATE: the WHERE clause guards against exhausted or
	// non-pending rows, the CASE flips status once the last use is consumed.
	res := r.db.WithContext(ctx).
		Model(&model.Invite{}).
		Where("id = ? AND status = ? AND uses_remaining > 0", id, model.InviteStatusPending).
		Updates(map[string]interface{}{
			"uses_remaining": gorm.Expr("uses_remaining - 1"),
			"status":         gorm.Expr("CASE WHEN uses_remaining - 1 <= 0 THEN 'accepted' ELSE status END"),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *pgInviteRepository) List(ctx context.Context) ([]model.Invite, error) {
	var invites []model.Invite
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *pgInviteRepository) CreateRedemption(ctx context.Context, redemption *model.InviteRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
