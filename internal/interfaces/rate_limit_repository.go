package interfaces

import "context"

// RateLimitRepository хранит дневные счетчики генераций по IP.
// day: UTC-дата в формате YYYY-MM-DD.
//
//go:generate mockery --name RateLimitRepository --output ../mocks --outpkg mocks --case=underscore
type RateLimitRepository interface {
	// GetCount returns 0 for a missing counter.
	GetCount(ctx context.Context, ipAddress, day string) (int, error)
	// Increment creates the counter lazily and returns the new value.
	Increment(ctx context.Context, ipAddress, day string) (int, error)
	// PruneBefore removes counters for days strictly before day.
	PruneBefore(ctx context.Context, day string) (int64, error)
}
