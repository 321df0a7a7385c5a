package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tdiorio2323/cabana/internal/service"
	"github.com/tdiorio2323/cabana/pkg/response"
)

type VipHandler struct {
	vipService service.VipService
}

func NewVipHandler(vipService service.VipService) *VipHandler {
	return &VipHandler{vipService: vipService}
}

type CreateVipCodeRequest struct {
	Code        string     `json:"code"`
	Role        string     `json:"role" binding:"required"`
	UsesAllowed int        `json:"uses_allowed"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Metadata    string     `json:"metadata"`
}

func (h *VipHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateVipCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	vip, err := h.vipService.Create(c.Request.Context(), service.CreateVipCodeInput{
		Code:        req.Code,
		Role:        req.Role,
		UsesAllowed: req.UsesAllowed,
		ExpiresAt:   req.ExpiresAt,
		Metadata:    req.Metadata,
		ActorID:     userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVipCodeExists):
			response.Conflict(c, err.Error())
		case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidArgument):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to create vip code")
		}
		return
	}

	response.Success(c, gin.H{"code": vip.Code})
}

type RedeemVipCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *VipHandler) Redeem(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req RedeemVipCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	role, err := h.vipService.Redeem(c.Request.Context(), service.RedeemVipCodeInput{
		Code:      req.Code,
		UserID:    userID,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVipCodeNotFound):
			response.NotFound(c, "vip code not found")
		case errors.Is(err, service.ErrVipCodeExpired):
			response.Gone(c, err.Error())
		case errors.Is(err, service.ErrVipCodeExhausted):
			response.Gone(c, "exhausted")
		case errors.Is(err, service.ErrInvalidArgument):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to redeem vip code")
		}
		return
	}

	response.Success(c, gin.H{"role": role})
}

func (h *VipHandler) List(c *gin.Context) {
	codes, err := h.vipService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list vip codes")
		return
	}
	response.Success(c, codes)
}
