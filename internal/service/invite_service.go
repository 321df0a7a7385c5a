package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/config"
	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
	"github.com/tdiorio2323/cabana/pkg/codegen"
)

type CreateInviteInput struct {
	Email         string
	Role          string
	ExpiresInDays int
	Note          string
	ActorID       uuid.UUID
}

type AcceptInviteInput struct {
	Code      string
	UserID    uuid.UUID
	IP        string
	UserAgent string
}

type InviteService interface {
	Create(ctx context.Context, input CreateInviteInput) (*model.Invite, error)
	Resend(ctx context.Context, email string, actorID uuid.UUID) (*model.Invite, error)
	Revoke(ctx context.Context, id *uuid.UUID, email string) (int64, error)
	Validate(ctx context.Context, code string) (*model.Invite, error)
	Accept(ctx context.Context, input AcceptInviteInput) (model.InviteRole, error)
	List(ctx context.Context) ([]model.Invite, error)
}

type inviteService struct {
	inviteRepo repository.InviteRepository
	mailSender MailSender
	cfg        config.InviteConfig
	logger     *zap.Logger
}

func NewInviteService(
	inviteRepo repository.InviteRepository,
	mailSender MailSender,
	cfg config.InviteConfig,
	logger *zap.Logger,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		mailSender: mailSender,
		cfg:        cfg,
		logger:     logger,
	}
}

// MapRole translates the externally-facing role name into an internal role.
func MapRole(role string) (model.InviteRole, error) {
	switch role {
	case "member", "client":
		return model.RoleClient, nil
	case "creator":
		return model.RoleCreator, nil
	case "admin":
		return model.RoleAdmin, nil
	}
	return "", ErrInvalidRole
}

func (s *inviteService) Create(ctx context.Context, input CreateInviteInput) (*model.Invite, error) {
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}
	role, err := MapRole(input.Role)
	if err != nil {
		return nil, err
	}

	// The partial unique index on pending invites is the real guard; this
	// pre-check just avoids burning a code for the common case.
	pending, err := s.inviteRepo.HasPending(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check pending invite: %w", err)
	}
	if pending {
		return nil, ErrPendingInviteExists
	}

	expiresInDays := input.ExpiresInDays
	if expiresInDays <= 0 {
		expiresInDays = s.cfg.DefaultExpiryDays
	}

	invite, err := s.insertInvite(ctx, input.Email, role, 1, expiresInDays, input.Note, input.ActorID)
	if err != nil {
		return nil, err
	}

	s.sendInviteMail(ctx, invite)
	return invite, nil
}

func (s *inviteService) Resend(ctx context.Context, email string, actorID uuid.UUID) (*model.Invite, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}

	role := model.RoleClient
	usesAllowed := 1
	note := ""

	latest, err := s.inviteRepo.LatestByEmail(ctx, email)
	switch {
	case err == nil:
		if elapsed := time.Since(latest.CreatedAt); elapsed < s.cfg.ResendCooldown {
			return nil, &RateLimitedError{RetryAfter: s.cfg.ResendCooldown - elapsed}
		}
		role = latest.Role
		usesAllowed = latest.UsesAllowed
		note = latest.Note
	case errors.Is(err, repository.ErrNotFound):
		// First invite for this email; defaults apply.
	default:
		return nil, fmt.Errorf("load latest invite: %w", err)
	}

	// Prior pending rows are revoked rather than left to coexist, so the
	// one-pending-invite-per-email invariant holds across resends.
	if _, err := s.inviteRepo.RevokePending(ctx, nil, email); err != nil {
		return nil, fmt.Errorf("revoke prior invites: %w", err)
	}

	invite, err := s.insertInvite(ctx, email, role, usesAllowed, s.cfg.DefaultExpiryDays, note, actorID)
	if err != nil {
		return nil, err
	}

	s.sendInviteMail(ctx, invite)
	return invite, nil
}

func (s *inviteService) Revoke(ctx context.Context, id *uuid.UUID, email string) (int64, error) {
	if id == nil && email == "" {
		return 0, fmt.Errorf("%w: id or email is required", ErrInvalidArgument)
	}
	return s.inviteRepo.RevokePending(ctx, id, email)
}

func (s *inviteService) Validate(ctx context.Context, code string) (*model.Invite, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidArgument)
	}

	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("load invite: %w", err)
	}

	switch invite.Status {
	case model.InviteStatusRevoked:
		return nil, ErrInviteNotFound
	case model.InviteStatusAccepted:
		return nil, ErrInviteExhausted
	}
	if invite.Expired(time.Now()) {
		return nil, ErrInviteExpired
	}
	if invite.UsesRemaining <= 0 {
		return nil, ErrInviteExhausted
	}
	return invite, nil
}

func (s *inviteService) Accept(ctx context.Context, input AcceptInviteInput) (model.InviteRole, error) {
	invite, err := s.Validate(ctx, input.Code)
	if err != nil {
		return "", err
	}

	consumed, err := s.inviteRepo.ConsumeUse(ctx, invite.ID)
	if err != nil {
		return "", fmt.Errorf("consume invite use: %w", err)
	}
	if !consumed {
		// Raced to the last use between validation and the decrement.
		return "", ErrInviteExhausted
	}

	redemption := &model.InviteRedemption{
		InviteID:  invite.ID,
		UserID:    input.UserID,
		IP:        input.IP,
		UserAgent: input.UserAgent,
	}
	if err := s.inviteRepo.CreateRedemption(ctx, redemption); err != nil {
		return "", fmt.Errorf("record invite redemption: %w", err)
	}

	s.logger.Info("invite accepted",
		zap.String("invite_id", invite.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("role", string(invite.Role)),
	)
	return invite.Role, nil
}

func (s *inviteService) List(ctx context.Context) ([]model.Invite, error) {
	return s.inviteRepo.List(ctx)
}

func (s *inviteService) insertInvite(
	ctx context.Context,
	email string,
	role model.InviteRole,
	usesAllowed int,
	expiresInDays int,
	note string,
	actorID uuid.UUID,
) (*model.Invite, error) {
	code, err := codegen.Generate(s.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate invite code: %w", err)
	}
	token, err := codegen.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	invite := &model.Invite{
		Code:          code,
		Email:         email,
		Role:          role,
		Status:        model.InviteStatusPending,
		UsesAllowed:   usesAllowed,
		UsesRemaining: usesAllowed,
		ExpiresAt:     time.Now().AddDate(0, 0, expiresInDays),
		Note:          note,
		Token:         token,
		CreatedBy:     actorID,
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPendingInviteExists
		}
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return invite, nil
}

func (s *inviteService) sendInviteMail(ctx context.Context, invite *model.Invite) {
	subject := "You're invited to Cabana"
	body := fmt.Sprintf(
		"You have been invited to join Cabana as a %s.\n\n"+
			"Your invite code: %s\n\n"+
			"This invite expires on %s.\n",
		invite.Role, invite.Code, invite.ExpiresAt.Format("Jan 2, 2006"),
	)
	if err := s.mailSender.Send(ctx, invite.Email, subject, body); err != nil {
		// Mail is best-effort: the invite row exists either way and the
		// admin can resend once the cooldown passes.
		s.logger.Warn("failed to send invite mail",
			zap.String("invite_id", invite.ID.String()),
			zap.Error(err),
		)
	}
}
