package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
	"github.com/tdiorio2323/cabana/pkg/codegen"
)

type CreateVipCodeInput struct {
	Code        string
	Role        string
	UsesAllowed int
	ExpiresAt   *time.Time
	Metadata    string
	ActorID     uuid.UUID
}

type RedeemVipCodeInput struct {
	Code      string
	UserID    uuid.UUID
	IP        string
	UserAgent string
}

type VipService interface {
	Create(ctx context.Context, input CreateVipCodeInput) (*model.VipCode, error)
	Redeem(ctx context.Context, input RedeemVipCodeInput) (model.InviteRole, error)
	List(ctx context.Context) ([]model.VipCode, error)
}

type vipService struct {
	vipRepo repository.VipCodeRepository
	logger  *zap.Logger
}

func NewVipService(vipRepo repository.VipCodeRepository, logger *zap.Logger) VipService {
	return &vipService{vipRepo: vipRepo, logger: logger}
}

func (s *vipService) Create(ctx context.Context, input CreateVipCodeInput) (*model.VipCode, error) {
	role, err := MapRole(input.Role)
	if err != nil {
		return nil, err
	}

	code := input.Code
	if code == "" {
		code, err = codegen.Generate(codegen.DefaultCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate vip code: %w", err)
		}
	}

	usesAllowed := input.UsesAllowed
	if usesAllowed <= 0 {
		usesAllowed = 1
	}
	metadata := input.Metadata
	if metadata == "" {
		metadata = "{}"
	}

	vip := &model.VipCode{
		Code:          code,
		Role:          role,
		UsesAllowed:   usesAllowed,
		UsesRemaining: usesAllowed,
		ExpiresAt:     input.ExpiresAt,
		Metadata:      metadata,
		CreatedBy:     input.ActorID,
	}
	if err := s.vipRepo.Create(ctx, vip); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrVipCodeExists
		}
		return nil, fmt.Errorf("create vip code: %w", err)
	}
	return vip, nil
}

func (s *vipService) Redeem(ctx context.Context, input RedeemVipCodeInput) (model.InviteRole, error) {
	if input.Code == "" {
		return "", fmt.Errorf("%w: code is required", ErrInvalidArgument)
	}

	vip, err := s.vipRepo.GetByCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrVipCodeNotFound
		}
		return "", fmt.Errorf("load vip code: %w", err)
	}

	if vip.Expired(time.Now()) {
		return "", ErrVipCodeExpired
	}
	if vip.UsesRemaining <= 0 {
		return "", ErrVipCodeExhausted
	}

	consumed, err := s.vipRepo.ConsumeUse(ctx, input.Code)
	if err != nil {
		return "", fmt.Errorf("consume vip use: %w", err)
	}
	if !consumed {
		return "", ErrVipCodeExhausted
	}

	redemption := &model.VipRedemption{
		Code:      input.Code,
		UserID:    input.UserID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	}
	if err := s.vipRepo.CreateRedemption(ctx, redemption); err != nil {
		return "", fmt.Errorf("record vip redemption: %w", err)
	}

	s.logger.Info("vip code redeemed",
		zap.String("code", vip.Code),
		zap.String("user_id", input.UserID.String()),
		zap.String("role", string(vip.Role)),
	)
	return vip.Role, nil
}

func (s *vipService) List(ctx context.Context) ([]model.VipCode, error) {
	return s.vipRepo.List(ctx)
}
