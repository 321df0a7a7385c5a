package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/config"
	"github.com/tdiorio2323/cabana/internal/handler/middleware"
	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
	"github.com/tdiorio2323/cabana/internal/service"
	jwtpkg "github.com/tdiorio2323/cabana/pkg/jwt"
	"github.com/tdiorio2323/cabana/pkg/signature"
)

const (
	testSigningKey   = "test-signing-key"
	testIssuer       = "cabana-test"
	testStripeSecret = "whsec_stripe"
)

type apiFixture struct {
	router      *gin.Engine
	jwtManager  *jwtpkg.Manager
	inviteRepo  repository.InviteRepository
	vipRepo     repository.VipCodeRepository
	eventRepo   repository.WebhookEventRepository
	bookingRepo repository.BookingRepository
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.RateLimit.PublicMax = 100
	cfg.RateLimit.PublicWindow = time.Minute
	cfg.Webhooks.StripeSecret = testStripeSecret
	cfg.Webhooks.DocuSignSecret = "whsec_docusign"
	cfg.Webhooks.IdentitySecret = "whsec_identity"
	cfg.Webhooks.ScreeningSecret = "whsec_screening"

	logger := zap.NewNop()
	f := &apiFixture{
		jwtManager:  jwtpkg.NewManager(testSigningKey, testIssuer, time.Hour),
		inviteRepo:  repository.NewMemoryInviteRepository(),
		vipRepo:     repository.NewMemoryVipCodeRepository(),
		eventRepo:   repository.NewMemoryWebhookEventRepository(),
		bookingRepo: repository.NewMemoryBookingRepository(),
	}

	inviteService := service.NewInviteService(f.inviteRepo, service.NewNoopSender(), config.InviteConfig{
		CodeLength:        8,
		DefaultExpiryDays: 30,
		ResendCooldown:    15 * time.Minute,
	}, logger)
	vipService := service.NewVipService(f.vipRepo, logger)
	rateLimitService := service.NewRateLimitService(repository.NewMemoryRateLimitRepository())
	webhookService := service.NewWebhookService(
		f.eventRepo, f.bookingRepo, repository.NewMemoryStateStore(), logger,
	)

	f.router = SetupRouter(
		cfg, logger, f.jwtManager,
		middleware.NewEmailAllowlist([]string{"admin@cabana.test"}),
		rateLimitService,
		NewInviteHandler(inviteService),
		NewVipHandler(vipService),
		NewWebhookHandler(webhookService, cfg.Webhooks, logger),
	)
	return f
}

func (f *apiFixture) token(t *testing.T, email string) string {
	t.Helper()
	token, err := f.jwtManager.Generate(uuid.New(), email, "")
	require.NoError(t, err)
	return token
}

func (f *apiFixture) adminToken(t *testing.T) string {
	return f.token(t, "admin@cabana.test")
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateInviteRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/invites", "", gin.H{
		"email": "new@cabana.test", "role": "creator",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateInviteForbiddenForNonAdmin(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/invites", f.token(t, "user@cabana.test"), gin.H{
		"email": "new@cabana.test", "role": "creator",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateInviteAsAdmin(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/invites", f.adminToken(t), gin.H{
		"email": "new@cabana.test", "role": "creator", "expires_in_days": 7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		ID    uuid.UUID `json:"id"`
		Token string    `json:"token"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotEqual(t, uuid.Nil, data.ID)
	assert.Regexp(t, "^[0-9a-f]{48}$", data.Token)
}

func TestCreateInviteDuplicatePending(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken(t)
	body := gin.H{"email": "new@cabana.test", "role": "client"}

	w := f.do(t, http.MethodPost, "/api/v1/invites", admin, body)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/invites", admin, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestValidateInvite(t *testing.T) {
	f := newAPIFixture(t)

	invite := &model.Invite{
		Code: "VALID123", Email: "v@cabana.test", Role: model.RoleClient,
		Status: model.InviteStatusPending, UsesAllowed: 1, UsesRemaining: 1,
		ExpiresAt: time.Now().AddDate(0, 0, 30), CreatedBy: uuid.New(),
	}
	require.NoError(t, f.inviteRepo.Create(context.Background(), invite))

	w := f.do(t, http.MethodGet, "/api/v1/invites/validate?code=VALID123", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Valid  bool `json:"valid"`
		Invite struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"invite"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Valid)
	assert.Equal(t, "v@cabana.test", data.Invite.Email)

	w = f.do(t, http.MethodGet, "/api/v1/invites/validate?code=NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/invites/validate", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptInviteFlow(t *testing.T) {
	f := newAPIFixture(t)

	invite := &model.Invite{
		Code: "JOINUS01", Email: "j@cabana.test", Role: model.RoleCreator,
		Status: model.InviteStatusPending, UsesAllowed: 1, UsesRemaining: 1,
		ExpiresAt: time.Now().AddDate(0, 0, 30), CreatedBy: uuid.New(),
	}
	require.NoError(t, f.inviteRepo.Create(context.Background(), invite))

	user := f.token(t, "j@cabana.test")
	w := f.do(t, http.MethodPost, "/api/v1/invites/accept", user, gin.H{"code": "JOINUS01"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Role string `json:"role"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "creator", data.Role)

	// Single-use invite is gone on the second accept.
	w = f.do(t, http.MethodPost, "/api/v1/invites/accept", user, gin.H{"code": "JOINUS01"})
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestResendInviteCooldown(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken(t)

	w := f.do(t, http.MethodPost, "/api/v1/invites/resend", admin, gin.H{"email": "r@cabana.test"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/invites/resend", admin, gin.H{"email": "r@cabana.test"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRevokeInvite(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken(t)

	w := f.do(t, http.MethodPost, "/api/v1/invites", admin, gin.H{
		"email": "gone@cabana.test", "role": "client",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/invites/revoke", admin, gin.H{"email": "gone@cabana.test"})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Revoked int64 `json:"revoked"`
	}
	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, int64(1), data.Revoked)

	w = f.do(t, http.MethodPost, "/api/v1/invites/revoke", admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVipRedeemExhausted(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken(t)

	w := f.do(t, http.MethodPost, "/api/v1/vip-codes", admin, gin.H{
		"code": "ONESHOT1", "role": "client", "uses_allowed": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	user := f.token(t, "u@cabana.test")
	w = f.do(t, http.MethodPost, "/api/v1/vip-codes/redeem", user, gin.H{"code": "ONESHOT1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/vip-codes/redeem", user, gin.H{"code": "ONESHOT1"})
	assert.Equal(t, http.StatusGone, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "exhausted", env.Message)
}

func (f *apiFixture) postWebhook(t *testing.T, path, header, sig string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set(header, sig)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestStripeWebhook(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	booking := &model.Booking{
		Email:           "c@cabana.test",
		PaymentIntentID: "pi_777",
		DepositStatus:   model.DepositStatusPending,
	}
	require.NoError(t, f.bookingRepo.Create(ctx, booking))

	payload := []byte(`{"id":"evt_ok","type":"payment_intent.succeeded","data":{"object":{"id":"pi_777"}}}`)
	sig := signature.Sign(payload, testStripeSecret)

	w := f.postWebhook(t, "/webhooks/stripe", "Stripe-Signature", sig, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.bookingRepo.GetByPaymentIntent(ctx, "pi_777")
	require.NoError(t, err)
	assert.Equal(t, model.DepositStatusPaid, stored.DepositStatus)
}

func TestStripeWebhookBadSignature(t *testing.T) {
	f := newAPIFixture(t)

	payload := []byte(`{"id":"evt_bad","type":"payment_intent.succeeded","data":{"object":{"id":"pi_777"}}}`)

	w := f.postWebhook(t, "/webhooks/stripe", "Stripe-Signature", "deadbeef", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing ledgered for a rejected delivery.
	exists, err := f.eventRepo.Exists(context.Background(), service.ProviderStripe, "evt_bad")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	f := newAPIFixture(t)

	payload := []byte(`{"id":"evt_nosig","type":"payment_intent.succeeded","data":{"object":{"id":"pi_777"}}}`)
	w := f.postWebhook(t, "/webhooks/stripe", "Stripe-Signature", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIdentityWebhook(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	booking := &model.Booking{
		Email:           "c@cabana.test",
		PaymentIntentID: "pi_888",
		IdentityStatus:  model.VettingStatusPending,
	}
	require.NoError(t, f.bookingRepo.Create(ctx, booking))

	payload := []byte(fmt.Sprintf(`{"id":"idv_9","booking_id":"%s","status":"verified"}`, booking.ID))
	sig := signature.Sign(payload, "whsec_identity")

	w := f.postWebhook(t, "/webhooks/identity", "X-Identity-Signature", sig, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := f.bookingRepo.GetByPaymentIntent(ctx, "pi_888")
	require.NoError(t, err)
	assert.Equal(t, model.VettingStatusApproved, stored.IdentityStatus)
}

func TestWebhookInvalidPayloadIsBadRequest(t *testing.T) {
	f := newAPIFixture(t)

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	sig := signature.Sign(payload, testStripeSecret)

	w := f.postWebhook(t, "/webhooks/stripe", "Stripe-Signature", sig, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookProcessingFailureIsServerError(t *testing.T) {
	f := newAPIFixture(t)

	// Valid signature and shape, but no booking matches: the provider should
	// retry, so this is a 5xx.
	payload := []byte(`{"id":"evt_missing","type":"payment_intent.succeeded","data":{"object":{"id":"pi_none"}}}`)
	sig := signature.Sign(payload, testStripeSecret)

	w := f.postWebhook(t, "/webhooks/stripe", "Stripe-Signature", sig, payload)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
