package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/config"
	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
)

func newInviteService(t *testing.T) (InviteService, repository.InviteRepository) {
	t.Helper()
	repo := repository.NewMemoryInviteRepository()
	svc := NewInviteService(repo, NewNoopSender(), config.InviteConfig{
		CodeLength:        8,
		DefaultExpiryDays: 30,
		ResendCooldown:    15 * time.Minute,
	}, zap.NewNop())
	return svc, repo
}

func TestCreateInvite(t *testing.T) {
	svc, _ := newInviteService(t)
	actor := uuid.New()

	invite, err := svc.Create(context.Background(), CreateInviteInput{
		Email:         "a@b.com",
		Role:          "member",
		ExpiresInDays: 7,
		ActorID:       actor,
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleClient, invite.Role)
	assert.Equal(t, model.InviteStatusPending, invite.Status)
	assert.Equal(t, 1, invite.UsesAllowed)
	assert.Equal(t, 1, invite.UsesRemaining)
	assert.Regexp(t, "^[0-9a-f]{48}$", invite.Token)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), invite.ExpiresAt, time.Minute)
}

func TestCreateInviteConflict(t *testing.T) {
	svc, _ := newInviteService(t)

	_, err := svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "client", ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "client", ActorID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrPendingInviteExists)

	// A different email is unaffected.
	_, err = svc.Create(context.Background(), CreateInviteInput{
		Email: "c@d.com", Role: "client", ActorID: uuid.New(),
	})
	assert.NoError(t, err)
}

func TestCreateInviteInvalidRole(t *testing.T) {
	svc, _ := newInviteService(t)

	_, err := svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "superuser", ActorID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestResendCooldown(t *testing.T) {
	svc, _ := newInviteService(t)
	actor := uuid.New()

	_, err := svc.Resend(context.Background(), "a@b.com", actor)
	require.NoError(t, err)

	_, err = svc.Resend(context.Background(), "a@b.com", actor)
	var rateLimited *RateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Greater(t, rateLimited.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rateLimited.RetryAfter, 15*time.Minute)
}

func TestResendInheritsFromLatestInvite(t *testing.T) {
	svc, repo := newInviteService(t)
	actor := uuid.New()

	// An invite older than the cooldown window, eligible for resend.
	first := &model.Invite{
		Code: "FIRSTONE", Email: "a@b.com", Role: model.RoleCreator,
		Status: model.InviteStatusPending, UsesAllowed: 1, UsesRemaining: 1,
		ExpiresAt: time.Now().AddDate(0, 0, 30), Note: "vetted on call",
		CreatedBy: actor, CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), first))

	resent, err := svc.Resend(context.Background(), "a@b.com", actor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, resent.Role)
	assert.Equal(t, "vetted on call", resent.Note)
	assert.NotEqual(t, first.Code, resent.Code)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), resent.ExpiresAt, time.Minute)
}

func TestResendRevokesPriorPending(t *testing.T) {
	svc, repo := newInviteService(t)
	actor := uuid.New()

	first := &model.Invite{
		Code: "OLDCODE1", Email: "a@b.com", Role: model.RoleClient,
		Status: model.InviteStatusPending, UsesAllowed: 1, UsesRemaining: 1,
		ExpiresAt: time.Now().AddDate(0, 0, 30), CreatedBy: actor,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), first))

	resent, err := svc.Resend(context.Background(), "a@b.com", actor)
	require.NoError(t, err)

	old, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusRevoked, old.Status)
	assert.Equal(t, model.InviteStatusPending, resent.Status)
}

func TestRevokeByID(t *testing.T) {
	svc, _ := newInviteService(t)

	invite, err := svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "client", ActorID: uuid.New(),
	})
	require.NoError(t, err)

	count, err := svc.Revoke(context.Background(), &invite.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Already revoked: affects zero rows.
	count, err = svc.Revoke(context.Background(), &invite.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRevokeRequiresIDOrEmail(t *testing.T) {
	svc, _ := newInviteService(t)

	_, err := svc.Revoke(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestValidate(t *testing.T) {
	svc, repo := newInviteService(t)

	invite, err := svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "client", ActorID: uuid.New(),
	})
	require.NoError(t, err)

	got, err := svc.Validate(context.Background(), invite.Code)
	require.NoError(t, err)
	assert.Equal(t, invite.ID, got.ID)

	_, err = svc.Validate(context.Background(), "NOSUCHCODE")
	assert.ErrorIs(t, err, ErrInviteNotFound)

	expired := &model.Invite{
		Code: "EXPIRED1", Email: "e@b.com", Role: model.RoleClient,
		Status: model.InviteStatusPending, UsesAllowed: 1, UsesRemaining: 1,
		ExpiresAt: time.Now().Add(-time.Hour), CreatedBy: uuid.New(),
	}
	require.NoError(t, repo.Create(context.Background(), expired))
	_, err = svc.Validate(context.Background(), "EXPIRED1")
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestAcceptConsumesInvite(t *testing.T) {
	svc, repo := newInviteService(t)
	user := uuid.New()

	invite, err := svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "creator", ActorID: uuid.New(),
	})
	require.NoError(t, err)

	role, err := svc.Accept(context.Background(), AcceptInviteInput{
		Code: invite.Code, UserID: user, IP: "10.0.0.1", UserAgent: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, role)

	stored, err := repo.GetByID(context.Background(), invite.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusAccepted, stored.Status)
	assert.Equal(t, 0, stored.UsesRemaining)

	// Second accept of a single-use invite is gone.
	_, err = svc.Accept(context.Background(), AcceptInviteInput{Code: invite.Code, UserID: user})
	assert.ErrorIs(t, err, ErrInviteExhausted)
}

func TestAcceptRevokedInvite(t *testing.T) {
	svc, _ := newInviteService(t)

	invite, err := svc.Create(context.Background(), CreateInviteInput{
		Email: "a@b.com", Role: "client", ActorID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.Revoke(context.Background(), &invite.ID, "")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), AcceptInviteInput{Code: invite.Code, UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestMapRole(t *testing.T) {
	for external, internal := range map[string]model.InviteRole{
		"member":  model.RoleClient,
		"client":  model.RoleClient,
		"creator": model.RoleCreator,
		"admin":   model.RoleAdmin,
	} {
		role, err := MapRole(external)
		require.NoError(t, err)
		assert.Equal(t, internal, role)
	}

	_, err := MapRole("owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
