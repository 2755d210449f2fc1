package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storybook-server/internal/mocks"
	"storybook-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestRateLimiter_Check(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("Remaining decreases with count and never goes negative", func(t *testing.T) {
		repo := mocks.NewMockRateLimitRepository(t)
		limiter := service.NewRateLimiter(repo, 3, zap.NewNop()).WithClock(clock)

		for count, want := range map[int]int{0: 3, 2: 1, 3: 0, 7: 0} {
			repo.On("GetCount", ctx, "1.2.3.4", "2026-03-14").Return(count, nil).Once()
			status := limiter.Check(ctx, "1.2.3.4")
			assert.Equal(t, want, status.Remaining, "count %d", count)
			assert.Equal(t, count < 3, status.Allowed, "count %d", count)
			assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), status.ResetAt)
		}
	})

	t.Run("New UTC day uses a fresh counter", func(t *testing.T) {
		repo := mocks.NewMockRateLimitRepository(t)
		current := now
		limiter := service.NewRateLimiter(repo, 3, zap.NewNop()).WithClock(func() time.Time { return current })

		repo.On("GetCount", ctx, "ip", "2026-03-14").Return(3, nil).Once()
		repo.On("GetCount", ctx, "ip", "2026-03-15").Return(0, nil).Once()

		assert.False(t, limiter.Check(ctx, "ip").Allowed)
		current = now.Add(2 * time.Hour)
		assert.True(t, limiter.Check(ctx, "ip").Allowed)
	})

	t.Run("Storage failure allows the request", func(t *testing.T) {
		repo := mocks.NewMockRateLimitRepository(t)
		limiter := service.NewRateLimiter(repo, 5, zap.NewNop()).WithClock(clock)
		repo.On("GetCount", ctx, "ip", mock.Anything).Return(0, errors.New("connection refused")).Once()

		status := limiter.Check(ctx, "ip")
		assert.True(t, status.Allowed)
		assert.Equal(t, 5, status.Remaining)
	})
}

func TestRateLimiter_IncrementAndPrune(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	repo := mocks.NewMockRateLimitRepository(t)
	limiter := service.NewRateLimiter(repo, 5, zap.NewNop()).WithClock(func() time.Time { return now })

	repo.On("Increment", ctx, "ip", "2026-03-14").Return(0, errors.New("boom")).Once()
	limiter.IncrementAfterSuccess(ctx, "ip")

	repo.On("PruneBefore", ctx, "2026-02-12").Return(int64(4), nil).Once()
	removed, err := limiter.PruneOlderThan(ctx, 30)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}
