package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tdiorio2323/cabana/internal/model"
)

type InviteRepository interface {
	// Create inserts a pending invite. Returns ErrConflict if another pending
	// invite exists for the same email (partial unique index).
	Create(ctx context.Context, invite *model.Invite) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Invite, error)
	GetByCode(ctx context.Context, code string) (*model.Invite, error)
	// LatestByEmail returns the most recently created invite for an email,
	// regardless of status. ErrNotFound when the email has no invites.
	LatestByEmail(ctx context.Context, email string) (*model.Invite, error)
	HasPending(ctx context.Context, email string) (bool, error)
	// RevokePending flips matching pending rows to revoked and returns how
	// many were affected. At least one of id/email must be set by the caller.
	RevokePending(ctx context.Context, id *uuid.UUID, email string) (int64, error)
	// ConsumeUse atomically decrements uses_remaining on a pending invite,
	// flipping status to accepted when it reaches zero. Returns false when the
	// invite had no uses left (or was not pending).
	ConsumeUse(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]model.Invite, error)
	CreateRedemption(ctx context.Context, redemption *model.InviteRedemption) error
}
