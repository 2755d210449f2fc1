package database

import (
	"context"
	"errors"

	"storybook-server/internal/interfaces"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ interfaces.RateLimitRepository = (*pgRateLimitRepository)(nil)

const (
	getRateLimitCountQuery = `SELECT count FROM rate_limits WHERE ip_address = $1 AND day = $2::date`

	incrementRateLimitQuery = `
        INSERT INTO rate_limits (ip_address, day, count, updated_at)
        VALUES ($1, $2::date, 1, NOW())
        ON CONFLICT (ip_address, day) DO UPDATE SET
            count = rate_limits.count + 1,
            updated_at = NOW()
        RETURNING count`

	pruneRateLimitsQuery = `DELETE FROM rate_limits WHERE day < $1::date`
)

type pgRateLimitRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgRateLimitRepository хранит счетчики в таблице rate_limits.
func NewPgRateLimitRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.RateLimitRepository {
	return &pgRateLimitRepository{
		db:     db,
		logger: logger.Named("PgRateLimitRepo"),
	}
}

func (r *pgRateLimitRepository) GetCount(ctx context.Context, ipAddress, day string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, getRateLimitCountQuery, ipAddress, day).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, storageErr("get rate limit count", err)
	}
	return count, nil
}

func (r *pgRateLimitRepository) Increment(ctx context.Context, ipAddress, day string) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, incrementRateLimitQuery, ipAddress, day).Scan(&count); err != nil {
		return 0, storageErr("increment rate limit", err)
	}
	r.logger.Debug("Rate limit counter incremented", zap.String("ip", ipAddress), zap.String("day", day), zap.Int("count", count))
	return count, nil
}

func (r *pgRateLimitRepository) PruneBefore(ctx context.Context, day string) (int64, error) {
	tag, err := r.db.Exec(ctx, pruneRateLimitsQuery, day)
	if err != nil {
		return 0, storageErr("prune rate limits", err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Info("Old rate limit counters pruned", zap.String("before", day), zap.Int64("rows", tag.RowsAffected()))
	}
	return tag.RowsAffected(), nil
}
