package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tdiorio2323/cabana/internal/service"
	"github.com/tdiorio2323/cabana/pkg/response"
)

type InviteHandler struct {
	inviteService service.InviteService
}

func NewInviteHandler(inviteService service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

type CreateInviteRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Role          string `json:"role" binding:"required"`
	ExpiresInDays int    `json:"expires_in_days"`
	Message       string `json:"message"`
}

// Create issues a new pending invite for an email.
func (h *InviteHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	invite, err := h.inviteService.Create(c.Request.Context(), service.CreateInviteInput{
		Email:         req.Email,
		Role:          req.Role,
		ExpiresInDays: req.ExpiresInDays,
		Note:          req.Message,
		ActorID:       userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPendingInviteExists):
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidArgument):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to create invite")
		}
		return
	}

	response.Success(c, gin.H{"id": invite.ID, "token": invite.Token})
}

type ResendInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Resend issues a fresh code for an email, subject to the cooldown window.
func (h *InviteHandler) Resend(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req ResendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	invite, err := h.inviteService.Resend(c.Request.Context(), req.Email, userID)
	if err != nil {
		var rateLimited *service.RateLimitedError
		switch {
		case errors.As(err, &rateLimited):
			response.RateLimited(c, rateLimited.RetryAfter, "an invite was sent recently, try again later")
		case errors.Is(err, service.ErrInvalidArgument):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to resend invite")
		}
		return
	}

	response.Success(c, gin.H{"invite_id": invite.ID, "code": invite.Code})
}

type RevokeInviteRequest struct {
	ID    *uuid.UUID `json:"id"`
	Email string     `json:"email"`
}

// Revoke flips pending invites to revoked by id, email, or both.
func (h *InviteHandler) Revoke(c *gin.Context) {
	var req RevokeInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	count, err := h.inviteService.Revoke(c.Request.Context(), req.ID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "failed to revoke invite")
		return
	}

	response.Success(c, gin.H{"revoked": count})
}

// Validate is the public pre-flight check used by the signup form.
func (h *InviteHandler) Validate(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "code query parameter is required")
		return
	}

	invite, err := h.inviteService.Validate(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFound(c, "invite not found")
		case errors.Is(err, service.ErrInviteExpired), errors.Is(err, service.ErrInviteExhausted):
			response.Gone(c, err.Error())
		default:
			response.InternalError(c, "failed to validate invite")
		}
		return
	}

	response.Success(c, gin.H{
		"valid": true,
		"invite": gin.H{
			"email":      invite.Email,
			"role":       invite.Role,
			"expires_at": invite.ExpiresAt,
		},
	})
}

type AcceptInviteRequest struct {
	Code string `json:"code" binding:"required"`
}

// Accept consumes one use of the invite for the authenticated user.
func (h *InviteHandler) Accept(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	role, err := h.inviteService.Accept(c.Request.Context(), service.AcceptInviteInput{
		Code:      req.Code,
		UserID:    userID,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFound(c, "invite not found")
		case errors.Is(err, service.ErrInviteExpired), errors.Is(err, service.ErrInviteExhausted):
			response.Gone(c, err.Error())
		case errors.Is(err, service.ErrInvalidArgument):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to accept invite")
		}
		return
	}

	response.Success(c, gin.H{"role": role})
}

func (h *InviteHandler) List(c *gin.Context) {
	invites, err := h.inviteService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list invites")
		return
	}
	response.Success(c, invites)
}
