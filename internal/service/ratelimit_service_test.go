package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdiorio2323/cabana/internal/repository"
)

func newRateLimitService(t *testing.T) (RateLimitService, repository.RateLimitRepository) {
	t.Helper()
	repo := repository.NewMemoryRateLimitRepository()
	return NewRateLimitService(repo), repo
}

func TestRateLimitAllowsUpToMax(t *testing.T) {
	svc, _ := newRateLimitService(t)
	ctx := context.Background()

	const max = 3
	window := time.Hour

	for i := 0; i < max; i++ {
		result, err := svc.Check(ctx, "resend:a@b.com", max, window)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "call %d should be allowed", i+1)
		assert.Equal(t, max-i-1, result.Remaining)
	}

	result, err := svc.Check(ctx, "resend:a@b.com", max, window)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestRateLimitResetIsOldestPlusWindow(t *testing.T) {
	svc, _ := newRateLimitService(t)
	ctx := context.Background()
	window := time.Hour

	start := time.Now()
	first, err := svc.Check(ctx, "k", 1, window)
	require.NoError(t, err)
	require.True(t, first.Allowed)

	denied, err := svc.Check(ctx, "k", 1, window)
	require.NoError(t, err)
	require.False(t, denied.Allowed)
	assert.WithinDuration(t, start.Add(window), denied.Reset, time.Second)
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	svc, _ := newRateLimitService(t)
	ctx := context.Background()

	first, err := svc.Check(ctx, "key-a", 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	other, err := svc.Check(ctx, "key-b", 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	deniedA, err := svc.Check(ctx, "key-a", 1, time.Hour)
	require.NoError(t, err)
	assert.False(t, deniedA.Allowed)
}

func TestRateLimitDeniedChecksWriteNothing(t *testing.T) {
	svc, repo := newRateLimitService(t)
	ctx := context.Background()

	_, err := svc.Check(ctx, "k", 1, time.Hour)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := svc.Check(ctx, "k", 1, time.Hour)
		require.NoError(t, err)
	}

	count, err := repo.CountSince(ctx, "k", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRateLimitCleanup(t *testing.T) {
	svc, repo := newRateLimitService(t)
	ctx := context.Background()

	// Two stale records and one fresh.
	old := time.Now().Add(-48 * time.Hour)
	_, err := repo.InsertIfUnder(ctx, "stale", old, old.Add(-time.Minute), 10)
	require.NoError(t, err)
	_, err = repo.InsertIfUnder(ctx, "stale", old, old.Add(-time.Minute), 10)
	require.NoError(t, err)
	_, err = svc.Check(ctx, "fresh", 10, time.Hour)
	require.NoError(t, err)

	removed, err := svc.Cleanup(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.CountSince(ctx, "fresh", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRateLimitInvalidArguments(t *testing.T) {
	svc, _ := newRateLimitService(t)

	_, err := svc.Check(context.Background(), "", 5, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Check(context.Background(), "k", 0, time.Minute)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.Cleanup(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
