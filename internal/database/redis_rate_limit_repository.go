package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storybook-server/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.RateLimitRepository = (*redisRateLimitRepository)(nil)

// Счетчик живет до конца своих UTC-суток плюс запас.
const redisCounterGrace = 48 * time.Hour

type redisRateLimitRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisRateLimitRepository creates a Redis-backed RateLimitRepository.
// Keys: rate_limit:{ip}:{day}.
func NewRedisRateLimitRepository(client *redis.Client, logger *zap.Logger) interfaces.RateLimitRepository {
	return &redisRateLimitRepository{
		client: client,
		logger: logger.Named("RedisRateLimitRepo"),
	}
}

func rateLimitKey(ipAddress, day string) string {
	return fmt.Sprintf("rate_limit:%s:%s", ipAddress, day)
}

func (r *redisRateLimitRepository) GetCount(ctx context.Context, ipAddress, day string) (int, error) {
	val, err := r.client.Get(ctx, rateLimitKey(ipAddress, day)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, storageErr("get rate limit count", err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, storageErr("parse rate limit count", err)
	}
	return count, nil
}

func (r *redisRateLimitRepository) Increment(ctx context.Context, ipAddress, day string) (int, error) {
	dayStart, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return 0, fmt.Errorf("invalid day %q: %w", day, err)
	}
	key := rateLimitKey(ipAddress, day)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, dayStart.Add(24*time.Hour+redisCounterGrace))
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to increment rate limit counter in redis", zap.String("key", key), zap.Error(err))
		return 0, storageErr("increment rate limit", err)
	}
	return int(incr.Val()), nil
}

// PruneBefore ничего не делает: ключи удаляются по TTL.
func (r *redisRateLimitRepository) PruneBefore(ctx context.Context, day string) (int64, error) {
	return 0, nil
}
