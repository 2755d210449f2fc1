package service

import (
	"context"
	"time"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"go.uber.org/zap"
)

// RateLimiter считает успешные генерации по IP за UTC-сутки.
type RateLimiter struct {
	repo   interfaces.RateLimitRepository
	limit  int
	now    func() time.Time
	logger *zap.Logger
}

// NewRateLimiter creates a limiter with the given daily limit.
func NewRateLimiter(repo interfaces.RateLimitRepository, dailyLimit int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		repo:   repo,
		limit:  dailyLimit,
		now:    time.Now,
		logger: logger.Named("RateLimiter"),
	}
}

// WithClock подменяет источник времени (для тестов смены суток).
func (r *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	r.now = now
	return r
}

// Limit возвращает дневной лимит.
func (r *RateLimiter) Limit() int {
	return r.limit
}

// Check читает текущий счетчик. Ошибка хранилища не блокирует пользователя.
func (r *RateLimiter) Check(ctx context.Context, ipAddress string) models.RateLimitStatus {
	now := r.now()
	status := models.RateLimitStatus{
		Allowed:   true,
		Remaining: r.limit,
		Limit:     r.limit,
		ResetAt:   models.NextUTCMidnight(now),
	}

	count, err := r.repo.GetCount(ctx, ipAddress, models.DayKey(now))
	if err != nil {
		r.logger.Warn("Rate limit lookup failed, allowing request", zap.String("ip", ipAddress), zap.Error(err))
		return status
	}

	status.CurrentCount = count
	status.Allowed = count < r.limit
	status.Remaining = max(r.limit-count, 0)
	return status
}

// IncrementAfterSuccess увеличивает счетчик; ошибки только логируются.
func (r *RateLimiter) IncrementAfterSuccess(ctx context.Context, ipAddress string) {
	count, err := r.repo.Increment(ctx, ipAddress, models.DayKey(r.now()))
	if err != nil {
		r.logger.Warn("Failed to increment rate limit counter", zap.String("ip", ipAddress), zap.Error(err))
		return
	}
	r.logger.Debug("Rate limit counter incremented", zap.String("ip", ipAddress), zap.Int("count", count))
}

// PruneOlderThan удаляет счетчики старше keepDays суток.
func (r *RateLimiter) PruneOlderThan(ctx context.Context, keepDays int) (int64, error) {
	cutoff := r.now().UTC().AddDate(0, 0, -keepDays)
	return r.repo.PruneBefore(ctx, models.DayKey(cutoff))
}

// RunPruning периодически вызывает PruneOlderThan, пока ctx не отменен.
func (r *RateLimiter) RunPruning(ctx context.Context, interval time.Duration, keepDays int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := r.PruneOlderThan(ctx, keepDays)
			if err != nil {
				r.logger.Warn("Failed to prune rate limit counters", zap.Error(err))
				continue
			}
			if removed > 0 {
				r.logger.Info("Old rate limit counters pruned", zap.Int64("removed", removed))
			}
		}
	}
}
