package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = time.Hour
)

// limiterStore holds keyed token-bucket limiters. Idle limiters are dropped
// by a cleanup goroutine that stops when the store's context is cancelled.
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newLimiterStore(ctx context.Context, rps float64, burst int) *limiterStore {
	store := &limiterStore{rps: rps, burst: burst, now: time.Now}
	go store.cleanupStale(ctx, limiterCleanupInterval)
	return store
}

func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	entry, ok := s.limiters.Load(key)
	if !ok {
		entry, _ = s.limiters.LoadOrStore(key, &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst),
		})
	}
	e := entry.(*limiterEntry)
	e.mu.Lock()
	e.lastAccess = s.now()
	e.mu.Unlock()
	return e.limiter
}

func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.removeIdle(s.now().Add(-limiterIdleTimeout))
		}
	}
}

func (s *limiterStore) removeIdle(threshold time.Time) {
	s.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		idle := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if idle {
			s.limiters.Delete(key)
		}
		return true
	})
}

// middleware rejects requests with 429 once the limiter for key(c) is exhausted.
func (s *limiterStore) middleware(key func(c *gin.Context) string, message string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		limiter := s.getLimiter(k)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Debug("rate limit exceeded",
				slog.String("key", k),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": message,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware limits authenticated requests per user. Requests
// without a principal are limited per client IP.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(ctx, rps, burst)
	return store.middleware(func(c *gin.Context) string {
		if principal, ok := currentPrincipal(c); ok {
			return "user:" + principal.ID
		}
		return "ip:" + c.ClientIP()
	}, "Too many requests. Please retry after the specified delay.", logger)
}

// LoginRateLimitMiddleware limits unauthenticated credential endpoints per client IP.
func LoginRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(ctx, rps, burst)
	return store.middleware(func(c *gin.Context) string {
		return c.ClientIP()
	}, "Too many authentication requests from this IP. Please retry after the specified delay.", logger)
}
