package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tdiorio2323/cabana/internal/model"
)

type pgVipCodeRepository struct {
	db *gorm.DB
}

func NewPGVipCodeRepository(db *gorm.DB) VipCodeRepository {
	return &pgVipCodeRepository{db: db}
}

func (r *pgVipCodeRepository) Create(ctx context.Context, code *model.VipCode) error {
	err := r.db.WithContext(ctx).Create(code).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *pgVipCodeRepository) GetByCode(ctx context.Context, code string) (*model.VipCode, error) {
	var vip model.VipCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&vip).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &vip, nil
}

func (r *pgVipCodeRepository) ConsumeUse(ctx context.Context, code string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.VipCode{}).
		Where("code = ? AND uses_remaining > 0", code).
		UpdateColumn("uses_remaining", gorm.Expr("uses_remaining - 1"))
	return res.RowsAffected > 0, res.Error
}

func (r *pgVipCodeRepository) List(ctx context.Context) ([]model.VipCode, error) {
	var codes []model.VipCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *pgVipCodeRepository) CreateRedemption(ctx context.Context, redemption *model.VipRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}
