package repository

import (
	"context"

	"github.com/tdiorio2323/cabana/internal/model"
)

type VipCodeRepository interface {
	// Create inserts a VIP code. Returns ErrConflict on a duplicate code.
	Create(ctx context.Context, code *model.VipCode) error
	GetByCode(ctx context.Context, code string) (*model.VipCode, error)
	// ConsumeUse atomically decrements uses_remaining, returning false when
	// the code had none left.
	ConsumeUse(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]model.VipCode, error)
	CreateRedemption(ctx context.Context, redemption *model.VipRedemption) error
}
