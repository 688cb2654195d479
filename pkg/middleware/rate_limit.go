package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware counts requests per path and caller in a redis fixed window.
func RateLimitMiddleware(redisClient *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.FullPath(), callerKey(c))

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Rate limit check failed"})
			c.Abort()
			return
		}

		if count == 1 {
			redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}

type localLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// LocalRateLimiter is an in-process token bucket per caller, used when no
// redis is available.
type LocalRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

func NewLocalRateLimiter(perMinute int) *LocalRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &LocalRateLimiter{
		limiters: make(map[string]*localLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		idle:     5 * time.Minute,
	}
}

func (l *LocalRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, entry := range l.limiters {
		if now.After(entry.expires) {
			delete(l.limiters, k)
		}
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &localLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.expires = now.Add(l.idle)

	return entry.limiter.Allow()
}

func LocalRateLimitMiddleware(limiter *LocalRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(callerKey(c)) {
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func callerKey(c *gin.Context) string {
	if userID := c.GetString(ContextUserID); userID != "" {
		return userID
	}
	return c.ClientIP()
}
