package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"storybook-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// BurstLimiter ограничивает частоту запросов с одного IP (token bucket).
// Дневной лимит генераций считается отдельно, в service.RateLimiter.
type BurstLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	logger   *zap.Logger
}

func NewBurstLimiter(rps float64, burst int, logger *zap.Logger) *BurstLimiter {
	return &BurstLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger.Named("BurstLimiter"),
	}
}

func (b *BurstLimiter) limiterFor(ip string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(b.rps, b.burst)}
		b.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Middleware возвращает gin-обработчик, отвечающий 429 при превышении частоты.
func (b *BurstLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !b.limiterFor(ip).Allow() {
			b.logger.Warn("Burst limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Code:    models.ErrCodeTooManyRequests,
				Message: "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}

// Cleanup забывает IP, не появлявшиеся дольше idle. Возвращает число удаленных.
func (b *BurstLimiter) Cleanup(idle time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for ip, v := range b.visitors {
		if time.Since(v.lastSeen) > idle {
			delete(b.visitors, ip)
			removed++
		}
	}
	return removed
}

// RunCleanup периодически вызывает Cleanup, пока ctx не отменен.
func (b *BurstLimiter) RunCleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Cleanup(idle)
		}
	}
}
