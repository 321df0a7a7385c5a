package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/config"
	"github.com/tdiorio2323/cabana/internal/handler/middleware"
	"github.com/tdiorio2323/cabana/internal/service"
	jwtpkg "github.com/tdiorio2323/cabana/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	adminPolicy middleware.AuthorizationPolicy,
	rateLimitService service.RateLimitService,
	inviteHandler *InviteHandler,
	vipHandler *VipHandler,
	webhookHandler *WebhookHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	publicLimit := middleware.RateLimit(
		rateLimitService, "public",
		cfg.RateLimit.PublicMax, cfg.RateLimit.PublicWindow,
		logger,
	)

	// Public routes
	r.GET("/api/v1/invites/validate", publicLimit, inviteHandler.Validate)

	// Authenticated routes
	authed := r.Group("/api/v1")
	authed.Use(middleware.JWTAuth(jwtManager))
	{
		authed.POST("/invites/accept", inviteHandler.Accept)
		authed.POST("/vip-codes/redeem", publicLimit, vipHandler.Redeem)
	}

	// Admin routes (JWT + allowlist check)
	admin := r.Group("/api/v1")
	admin.Use(middleware.JWTAuth(jwtManager))
	admin.Use(middleware.AdminAuth(adminPolicy))
	{
		admin.POST("/invites", inviteHandler.Create)
		admin.GET("/invites", inviteHandler.List)
		admin.POST("/invites/resend", inviteHandler.Resend)
		admin.POST("/invites/revoke", inviteHandler.Revoke)

		admin.POST("/vip-codes", vipHandler.Create)
		admin.GET("/vip-codes", vipHandler.List)
	}

	// Provider webhooks (signature auth, raw body)
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.Stripe)
		webhooks.POST("/contracts", webhookHandler.Contract)
		webhooks.POST("/identity", webhookHandler.Identity)
		webhooks.POST("/screening", webhookHandler.Screening)
	}

	return r
}
