package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
)

func newVipService(t *testing.T) (VipService, repository.VipCodeRepository) {
	t.Helper()
	repo := repository.NewMemoryVipCodeRepository()
	return NewVipService(repo, zap.NewNop()), repo
}

func TestCreateVipCode(t *testing.T) {
	svc, _ := newVipService(t)

	vip, err := svc.Create(context.Background(), CreateVipCodeInput{
		Role:        "creator",
		UsesAllowed: 5,
		Metadata:    `{"campaign":"launch"}`,
		ActorID:     uuid.New(),
	})
	require.NoError(t, err)

	assert.Len(t, vip.Code, 8)
	assert.Equal(t, model.RoleCreator, vip.Role)
	assert.Equal(t, 5, vip.UsesAllowed)
	assert.Equal(t, 5, vip.UsesRemaining)
}

func TestCreateVipCodeExplicitCodeConflict(t *testing.T) {
	svc, _ := newVipService(t)

	_, err := svc.Create(context.Background(), CreateVipCodeInput{
		Code: "LAUNCH24", Role: "client", ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateVipCodeInput{
		Code: "LAUNCH24", Role: "client", ActorID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrVipCodeExists)
}

func TestRedeemVipCode(t *testing.T) {
	svc, repo := newVipService(t)
	user := uuid.New()

	vip, err := svc.Create(context.Background(), CreateVipCodeInput{
		Code: "GOLD2024", Role: "client", UsesAllowed: 2, ActorID: uuid.New(),
	})
	require.NoError(t, err)

	role, err := svc.Redeem(context.Background(), RedeemVipCodeInput{
		Code: vip.Code, UserID: user, IP: "10.0.0.1", UserAgent: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleClient, role)

	stored, err := repo.GetByCode(context.Background(), vip.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsesRemaining)
}

func TestRedeemVipCodeNotFound(t *testing.T) {
	svc, _ := newVipService(t)

	_, err := svc.Redeem(context.Background(), RedeemVipCodeInput{
		Code: "NOSUCH", UserID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrVipCodeNotFound)
}

func TestRedeemVipCodeExhausted(t *testing.T) {
	svc, _ := newVipService(t)
	user := uuid.New()

	vip, err := svc.Create(context.Background(), CreateVipCodeInput{
		Code: "ONESHOT", Role: "client", UsesAllowed: 1, ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), RedeemVipCodeInput{Code: vip.Code, UserID: user})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), RedeemVipCodeInput{Code: vip.Code, UserID: user})
	assert.ErrorIs(t, err, ErrVipCodeExhausted)
}

func TestRedeemVipCodeExpired(t *testing.T) {
	svc, _ := newVipService(t)
	past := time.Now().Add(-time.Hour)

	vip, err := svc.Create(context.Background(), CreateVipCodeInput{
		Code: "EXPIRED2", Role: "client", ExpiresAt: &past, ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), RedeemVipCodeInput{Code: vip.Code, UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrVipCodeExpired)
}
