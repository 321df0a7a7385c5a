package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidRole         = errors.New("invalid role")
	ErrPendingInviteExists = errors.New("a pending invite already exists for this email")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteExpired       = errors.New("invite has expired")
	ErrInviteExhausted     = errors.New("invite usage exhausted")
	ErrVipCodeExists       = errors.New("vip code already exists")
	ErrVipCodeNotFound     = errors.New("vip code not found")
	ErrVipCodeExpired      = errors.New("vip code has expired")
	ErrVipCodeExhausted    = errors.New("vip code usage exhausted")
	ErrInvalidPayload      = errors.New("invalid webhook payload")
)

// RateLimitedError reports a cooldown or window violation along with how long
// the caller must wait; handlers surface it as a Retry-After header.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}
