package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdiorio2323/cabana/internal/model"
	"github.com/tdiorio2323/cabana/internal/repository"
)

const (
	ProviderStripe    = "stripe"
	ProviderDocuSign  = "docusign"
	ProviderIdentity  = "identity"
	ProviderScreening = "screening"
)

// dedupeCacheTTL bounds the StateStore fast-path entries; the webhook_events
// table remains the durable source of truth.
const dedupeCacheTTL = 24 * time.Hour

// WebhookService consumes verified provider events. Signature verification
// happens in the handler (it owns the headers); everything here assumes the
// payload is authentic. Each Process method is safe to re-invoke with the
// same event: the ledger row is written before the booking mutation, so a
// duplicate delivery returns nil without side effects.
type WebhookService interface {
	ProcessStripe(ctx context.Context, payload []byte) error
	ProcessContract(ctx context.Context, payload []byte) error
	ProcessIdentity(ctx context.Context, payload []byte) error
	ProcessScreening(ctx context.Context, payload []byte) error
}

type webhookService struct {
	eventRepo   repository.WebhookEventRepository
	bookingRepo repository.BookingRepository
	stateStore  repository.StateStore
	logger      *zap.Logger
}

func NewWebhookService(
	eventRepo repository.WebhookEventRepository,
	bookingRepo repository.BookingRepository,
	stateStore repository.StateStore,
	logger *zap.Logger,
) WebhookService {
	return &webhookService{
		eventRepo:   eventRepo,
		bookingRepo: bookingRepo,
		stateStore:  stateStore,
		logger:      logger,
	}
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

func (s *webhookService) ProcessStripe(ctx context.Context, payload []byte) error {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.ID == "" {
		return ErrInvalidPayload
	}

	duplicate, err := s.ledger(ctx, ProviderStripe, event.ID, event.Type)
	if err != nil {
		return err
	}
	if duplicate {
		return nil
	}

	switch event.Type {
	case "payment_intent.succeeded":
		if err := s.setDeposit(ctx, event.Data.Object.ID, model.DepositStatusPaid); err != nil {
			return err
		}
	case "payment_intent.payment_failed":
		if err := s.setDeposit(ctx, event.Data.Object.ID, model.DepositStatusFailed); err != nil {
			return err
		}
	default:
		// Ledgered and ignored; Stripe sends many event types we do not act on.
		s.logger.Debug("ignoring stripe event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
	}

	s.markProcessed(ctx, ProviderStripe, event.ID)
	return nil
}

type docusignEvent struct {
	EnvelopeID string `json:"envelopeId"`
	Status     string `json:"status"`
}

func (s *webhookService) ProcessContract(ctx context.Context, payload []byte) error {
	var event docusignEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.EnvelopeID == "" {
		return ErrInvalidPayload
	}

	// DocuSign Connect messages carry no event id of their own; the envelope
	// id plus status is the natural idempotency key.
	eventID := event.EnvelopeID + ":" + event.Status
	duplicate, err := s.ledger(ctx, ProviderDocuSign, eventID, event.Status)
	if err != nil {
		return err
	}
	if duplicate {
		return nil
	}

	if event.Status == "completed" {
		affected, err := s.bookingRepo.SetContractStatus(ctx, event.EnvelopeID, model.ContractStatusSigned)
		if err != nil {
			return fmt.Errorf("mark contract signed: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("no booking for envelope %s", event.EnvelopeID)
		}
	}

	s.markProcessed(ctx, ProviderDocuSign, eventID)
	return nil
}

type vettingEvent struct {
	ID        string    `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Status    string    `json:"status"`
}

func (s *webhookService) ProcessIdentity(ctx context.Context, payload []byte) error {
	return s.processVetting(ctx, ProviderIdentity, payload, s.bookingRepo.SetIdentityStatus)
}

func (s *webhookService) ProcessScreening(ctx context.Context, payload []byte) error {
	return s.processVetting(ctx, ProviderScreening, payload, s.bookingRepo.SetScreeningStatus)
}

func (s *webhookService) processVetting(
	ctx context.Context,
	provider string,
	payload []byte,
	setStatus func(context.Context, uuid.UUID, model.VettingStatus) (int64, error),
) error {
	var event vettingEvent
	if err := json.Unmarshal(payload, &event); err != nil || event.ID == "" || event.BookingID == uuid.Nil {
		return ErrInvalidPayload
	}

	duplicate, err := s.ledger(ctx, provider, event.ID, event.Status)
	if err != nil {
		return err
	}
	if duplicate {
		return nil
	}

	status, actionable := vettingStatusFor(event.Status)
	if actionable {
		affected, err := setStatus(ctx, event.BookingID, status)
		if err != nil {
			return fmt.Errorf("update %s status: %w", provider, err)
		}
		if affected == 0 {
			return fmt.Errorf("no booking %s for %s event %s", event.BookingID, provider, event.ID)
		}
	}

	s.markProcessed(ctx, provider, event.ID)
	return nil
}

func vettingStatusFor(status string) (model.VettingStatus, bool) {
	switch status {
	case "verified", "clear", "approved":
		return model.VettingStatusApproved, true
	case "failed", "flagged", "rejected":
		return model.VettingStatusRejected, true
	}
	return "", false
}

// ledger performs the duplicate check and writes the idempotency row. It
// returns true when this event was already processed. The row goes in before
// the domain mutation: a crash mid-mutation leaves "recorded but not applied",
// which is preferred over silently reapplying partial work on retry.
func (s *webhookService) ledger(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	if exists, err := s.stateStore.Exists(ctx, dedupeKey(provider, eventID)); err == nil && exists {
		return true, nil
	}

	exists, err := s.eventRepo.Exists(ctx, provider, eventID)
	if err != nil {
		return false, fmt.Errorf("ledger lookup: %w", err)
	}
	if exists {
		return true, nil
	}

	err = s.eventRepo.Create(ctx, &model.WebhookEvent{
		Provider:    provider,
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	})
	if errors.Is(err, repository.ErrConflict) {
		// A concurrent delivery of the same event won the insert.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger insert: %w", err)
	}
	return false, nil
}

func (s *webhookService) markProcessed(ctx context.Context, provider, eventID string) {
	// Cache only; a failed Set just means the next retry hits the database.
	if err := s.stateStore.Set(ctx, dedupeKey(provider, eventID), []byte("1"), dedupeCacheTTL); err != nil {
		s.logger.Debug("webhook dedupe cache set failed", zap.Error(err))
	}
}

func (s *webhookService) setDeposit(ctx context.Context, paymentIntentID string, status model.DepositStatus) error {
	if paymentIntentID == "" {
		return ErrInvalidPayload
	}
	affected, err := s.bookingRepo.SetDepositStatus(ctx, paymentIntentID, status)
	if err != nil {
		return fmt.Errorf("update deposit status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no booking for payment intent %s", paymentIntentID)
	}
	return nil
}

func dedupeKey(provider, eventID string) string {
	return "webhook:" + provider + ":" + eventID
}
