package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/config"
	"github.com/tdiorio2323/cabana/internal/service"
	"github.com/tdiorio2323/cabana/pkg/response"
	"github.com/tdiorio2323/cabana/pkg/signature"
)

// WebhookHandler adapts provider deliveries onto the webhook service. Each
// endpoint verifies the provider's signature header against the raw body
// before anything touches the database; processing errors come back as 5xx so
// the provider's own retry policy re-delivers.
type WebhookHandler struct {
	webhookService service.WebhookService
	secrets        config.WebhooksConfig
	logger         *zap.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, secrets config.WebhooksConfig, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		secrets:        secrets,
		logger:         logger,
	}
}

func (h *WebhookHandler) Stripe(c *gin.Context) {
	h.handle(c, "Stripe-Signature", h.secrets.StripeSecret, signature.VerifyStripe, h.webhookService.ProcessStripe)
}

func (h *WebhookHandler) Contract(c *gin.Context) {
	h.handle(c, "X-DocuSign-Signature-1", h.secrets.DocuSignSecret, signature.VerifyDocuSign, h.webhookService.ProcessContract)
}

func (h *WebhookHandler) Identity(c *gin.Context) {
	h.handle(c, "X-Identity-Signature", h.secrets.IdentitySecret, signature.VerifyIdentity, h.webhookService.ProcessIdentity)
}

func (h *WebhookHandler) Screening(c *gin.Context) {
	h.handle(c, "X-Screening-Signature", h.secrets.ScreeningSecret, signature.VerifyScreening, h.webhookService.ProcessScreening)
}

func (h *WebhookHandler) handle(
	c *gin.Context,
	header string,
	secret string,
	verify func(payload []byte, sig, secret string) bool,
	process func(ctx context.Context, payload []byte) error,
) {
	if secret == "" {
		h.logger.Error("webhook secret not configured", zap.String("path", c.Request.URL.Path))
		response.InternalError(c, "webhook not configured")
		return
	}

	payload, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	if !verify(payload, c.GetHeader(header), secret) {
		h.logger.Warn("webhook signature mismatch", zap.String("path", c.Request.URL.Path))
		response.BadRequest(c, "invalid signature")
		return
	}

	if err := process(c.Request.Context(), payload); err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			response.BadRequest(c, "invalid payload")
			return
		}
		h.logger.Error("webhook processing failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.InternalError(c, "webhook processing failed")
		return
	}

	response.Success(c, gin.H{"received": true})
}
