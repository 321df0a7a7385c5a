package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tdiorio2323/cabana/internal/repository"
)

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	// Reset is when the oldest in-window event ages out, i.e. the earliest
	// time a denied caller can expect a slot to free up.
	Reset time.Time
}

type RateLimitService interface {
	// Check applies a sliding-window limit for key: at most max events within
	// the trailing window. An allowed check records one durable event; a
	// denied check records nothing.
	Check(ctx context.Context, key string, max int, window time.Duration) (*RateLimitResult, error)
	// Cleanup removes events older than the retention cutoff and returns the
	// count removed. Meant for periodic invocation, not the request path.
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

type rateLimitService struct {
	repo repository.RateLimitRepository
}

func NewRateLimitService(repo repository.RateLimitRepository) RateLimitService {
	return &rateLimitService{repo: repo}
}

func (s *rateLimitService) Check(ctx context.Context, key string, max int, window time.Duration) (*RateLimitResult, error) {
	if key == "" || max <= 0 || window <= 0 {
		return nil, fmt.Errorf("%w: key, max and window are required", ErrInvalidArgument)
	}

	now := time.Now()
	since := now.Add(-window)

	allowed, err := s.repo.InsertIfUnder(ctx, key, now, since, max)
	if err != nil {
		return nil, fmt.Errorf("rate limit insert: %w", err)
	}

	oldest, err := s.repo.OldestSince(ctx, key, since)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			oldest = now
		} else {
			return nil, fmt.Errorf("rate limit oldest: %w", err)
		}
	}
	reset := oldest.Add(window)

	if !allowed {
		return &RateLimitResult{Allowed: false, Remaining: 0, Reset: reset}, nil
	}

	count, err := s.repo.CountSince(ctx, key, since)
	if err != nil {
		return nil, fmt.Errorf("rate limit count: %w", err)
	}
	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (s *rateLimitService) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", ErrInvalidArgument)
	}
	return s.repo.DeleteBefore(ctx, time.Now().Add(-olderThan))
}
