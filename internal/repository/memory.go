package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tdiorio2323/cabana/internal/model"
)

// In-memory repository implementations. Selected at startup in demo mode so
// the service runs without real credentials; the same implementations back the
// unit tests. Semantics mirror the Postgres implementations, including the
// conflict behavior normally enforced by unique indexes.

type memoryInviteRepository struct {
	mu          sync.Mutex
	invites     []*model.Invite
	redemptions []*model.InviteRedemption
}

func NewMemoryInviteRepository() InviteRepository {
	return &memoryInviteRepository{}
}

func (r *memoryInviteRepository) Create(_ context.Context, invite *model.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if invite.Status == model.InviteStatusPending {
		for _, existing := range r.invites {
			if existing.Status == model.InviteStatusPending &&
				strings.EqualFold(existing.Email, invite.Email) {
				return ErrConflict
			}
		}
	}

	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now()
	}
	invite.UpdatedAt = invite.CreatedAt
	clone := *invite
	r.invites = append(r.invites, &clone)
	return nil
}

func (r *memoryInviteRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, invite := range r.invites {
		if invite.ID == id {
			clone := *invite
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryInviteRepository) GetByCode(_ context.Context, code string) (*model.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, invite := range r.invites {
		if invite.Code == code {
			clone := *invite
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryInviteRepository) LatestByEmail(_ context.Context, email string) (*model.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *model.Invite
	for _, invite := range r.invites {
		if !strings.EqualFold(invite.Email, email) {
			continue
		}
		if latest == nil || invite.CreatedAt.After(latest.CreatedAt) {
			latest = invite
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (r *memoryInviteRepository) HasPending(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, invite := range r.invites {
		if invite.Status == model.InviteStatusPending && strings.EqualFold(invite.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryInviteRepository) RevokePending(_ context.Context, id *uuid.UUID, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, invite := range r.invites {
		if invite.Status != model.InviteStatusPending {
			continue
		}
		match := (id != nil && invite.ID == *id) ||
			(email != "" && strings.EqualFold(invite.Email, email))
		if match {
			invite.Status = model.InviteStatusRevoked
			invite.UpdatedAt = time.Now()
			affected++
		}
	}
	return affected, nil
}

func (r *memoryInviteRepository) ConsumeUse(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, invite := range r.invites {
		if invite.ID != id {
			continue
		}
		if invite.Status != model.InviteStatusPending || invite.UsesRemaining <= 0 {
			return false, nil
		}
		invite.UsesRemaining--
		if invite.UsesRemaining <= 0 {
			invite.Status = model.InviteStatusAccepted
		}
		invite.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (r *memoryInviteRepository) List(_ context.Context) ([]model.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Invite, 0, len(r.invites))
	for _, invite := range r.invites {
		out = append(out, *invite)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryInviteRepository) CreateRedemption(_ context.Context, redemption *model.InviteRedemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if redemption.ID == uuid.Nil {
		redemption.ID = uuid.New()
	}
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = time.Now()
	}
	clone := *redemption
	r.redemptions = append(r.redemptions, &clone)
	return nil
}

type memoryVipCodeRepository struct {
	mu          sync.Mutex
	codes       []*model.VipCode
	redemptions []*model.VipRedemption
}

func NewMemoryVipCodeRepository() VipCodeRepository {
	return &memoryVipCodeRepository{}
}

func (r *memoryVipCodeRepository) Create(_ context.Context, code *model.VipCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.codes {
		if existing.Code == code.Code {
			return ErrConflict
		}
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.UpdatedAt = code.CreatedAt
	clone := *code
	r.codes = append(r.codes, &clone)
	return nil
}

func (r *memoryVipCodeRepository) GetByCode(_ context.Context, code string) (*model.VipCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, vip := range r.codes {
		if vip.Code == code {
			clone := *vip
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryVipCodeRepository) ConsumeUse(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, vip := range r.codes {
		if vip.Code != code {
			continue
		}
		if vip.UsesRemaining <= 0 {
			return false, nil
		}
		vip.UsesRemaining--
		vip.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (r *memoryVipCodeRepository) List(_ context.Context) ([]model.VipCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.VipCode, 0, len(r.codes))
	for _, vip := range r.codes {
		out = append(out, *vip)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryVipCodeRepository) CreateRedemption(_ context.Context, redemption *model.VipRedemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if redemption.ID == uuid.Nil {
		redemption.ID = uuid.New()
	}
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = time.Now()
	}
	clone := *redemption
	r.redemptions = append(r.redemptions, &clone)
	return nil
}

type memoryWebhookEventRepository struct {
	mu     sync.Mutex
	events map[string]*model.WebhookEvent
}

func NewMemoryWebhookEventRepository() WebhookEventRepository {
	return &memoryWebhookEventRepository{events: make(map[string]*model.WebhookEvent)}
}

func webhookEventKey(provider, eventID string) string {
	return provider + ":" + eventID
}

func (r *memoryWebhookEventRepository) Exists(_ context.Context, provider, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[webhookEventKey(provider, eventID)]
	return ok, nil
}

func (r *memoryWebhookEventRepository) Create(_ context.Context, event *model.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := webhookEventKey(event.Provider, event.EventID)
	if _, ok := r.events[key]; ok {
		return ErrConflict
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	clone := *event
	r.events[key] = &clone
	return nil
}

type memoryRateLimitRepository struct {
	mu      sync.Mutex
	records []model.RateLimitRecord
}

func NewMemoryRateLimitRepository() RateLimitRepository {
	return &memoryRateLimitRepository{}
}

func (r *memoryRateLimitRepository) InsertIfUnder(_ context.Context, key string, at, since time.Time, max int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	for _, record := range r.records {
		if record.Key == key && !record.CreatedAt.Before(since) {
			count++
		}
	}
	if count >= max {
		return false, nil
	}
	r.records = append(r.records, model.RateLimitRecord{
		ID:        uuid.New(),
		Key:       key,
		CreatedAt: at,
	})
	return true, nil
}

func (r *memoryRateLimitRepository) CountSince(_ context.Context, key string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, record := range r.records {
		if record.Key == key && !record.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memoryRateLimitRepository) OldestSince(_ context.Context, key string, since time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest time.Time
	for _, record := range r.records {
		if record.Key != key || record.CreatedAt.Before(since) {
			continue
		}
		if oldest.IsZero() || record.CreatedAt.Before(oldest) {
			oldest = record.CreatedAt
		}
	}
	if oldest.IsZero() {
		return time.Time{}, ErrNotFound
	}
	return oldest, nil
}

func (r *memoryRateLimitRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	var removed int64
	for _, record := range r.records {
		if record.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	r.records = kept
	return removed, nil
}

type memoryBookingRepository struct {
	mu       sync.Mutex
	bookings []*model.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{}
}

func (r *memoryBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = booking.CreatedAt
	clone := *booking
	r.bookings = append(r.bookings, &clone)
	return nil
}

func (r *memoryBookingRepository) GetByPaymentIntent(_ context.Context, paymentIntentID string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, booking := range r.bookings {
		if booking.PaymentIntentID == paymentIntentID {
			clone := *booking
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryBookingRepository) SetDepositStatus(_ context.Context, paymentIntentID string, status model.DepositStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, booking := range r.bookings {
		if booking.PaymentIntentID == paymentIntentID {
			booking.DepositStatus = status
			booking.UpdatedAt = time.Now()
			affected++
		}
	}
	return affected, nil
}

func (r *memoryBookingRepository) SetContractStatus(_ context.Context, envelopeID string, status model.ContractStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, booking := range r.bookings {
		if booking.ContractEnvelopeID == envelopeID {
			booking.ContractStatus = status
			booking.UpdatedAt = time.Now()
			affected++
		}
	}
	return affected, nil
}

func (r *memoryBookingRepository) SetIdentityStatus(_ context.Context, bookingID uuid.UUID, status model.VettingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, booking := range r.bookings {
		if booking.ID == bookingID {
			booking.IdentityStatus = status
			booking.UpdatedAt = time.Now()
			affected++
		}
	}
	return affected, nil
}

func (r *memoryBookingRepository) SetScreeningStatus(_ context.Context, bookingID uuid.UUID, status model.VettingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, booking := range r.bookings {
		if booking.ID == bookingID {
			booking.ScreeningStatus = status
			booking.UpdatedAt = time.Now()
			affected++
		}
	}
	return affected, nil
}
