package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimit limits how often one user may perform an action. With a
// Redis client it uses a fixed window counter shared across instances;
// without one it falls back to per-user in-process token buckets.
// Redis errors fail open: a broken limiter should not block voting.
func RateLimit(rdb *redis.Client, action string, limit int, window time.Duration) gin.HandlerFunc {
	local := newLocalLimiter(limit, window)

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required."})
			return
		}

		allowed := true
		if rdb != nil {
			key := fmt.Sprintf("rate:%s:%d", action, user.ID)
			n, err := rdb.Incr(c, key).Result()
			if err != nil {
				zap.L().Warn("rate limiter redis error", zap.String("key", key), zap.Error(err))
			} else {
				if n == 1 {
					rdb.Expire(c, key, window)
				}
				allowed = n <= int64(limit)
			}
		} else {
			allowed = local.allow(user.ID)
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests, slow down."})
			return
		}
		c.Next()
	}
}

// localLimiter keeps a token bucket per user for single-instance
// deployments without Redis.
type localLimiter struct {
	mu      sync.Mutex
	buckets map[uint]*rate.Limiter
	rate    rate.Limit
	burst   int
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	return &localLimiter{
		buckets: make(map[uint]*rate.Limiter),
		rate:    rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
	}
}

func (l *localLimiter) allow(userID uint) bool {
	l.mu.Lock()
	bucket, ok := l.buckets[userID]
	if !ok {
		bucket = rate.NewLimiter(l.rate, l.burst)
		l.buckets[userID] = bucket
	}
	l.mu.Unlock()
	return bucket.Allow()
}
