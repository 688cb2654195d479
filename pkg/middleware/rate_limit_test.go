package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blop-post/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestLocalRateLimiter_Allow(t *testing.T) {
	limiter := NewLocalRateLimiter(2)

	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.True(t, limiter.Allow("1.2.3.4"))
	assert.False(t, limiter.Allow("1.2.3.4"))

	// Separate callers have separate buckets.
	assert.True(t, limiter.Allow("5.6.7.8"))
}

func TestLocalRateLimitMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.Use(LocalRateLimitMiddleware(NewLocalRateLimiter(1)))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitMiddleware_KeyedByUserWhenAuthenticated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	router := setupTestRouter()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(ContextUserID, user)
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(client, 1, time.Minute))
	router.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	send := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/test", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("user-a"))
	assert.Equal(t, http.StatusTooManyRequests, send("user-a"))
	assert.Equal(t, http.StatusOK, send("user-b"))
	assert.Equal(t, http.StatusOK, send(""))
	assert.Equal(t, http.StatusTooManyRequests, send(""))

	assert.True(t, mr.Exists("rate_limit:/test:user-a"))
	assert.True(t, mr.Exists("rate_limit:/test:192.0.2.1"))
	assert.Equal(t, time.Minute, mr.TTL("rate_limit:/test:user-b"))

	// The window resets once the key expires.
	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, send("user-a"))
}

func TestRateLimitMiddleware_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	router := setupTestRouter()
	router.Use(RateLimitMiddleware(client, 1, time.Minute))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	router := setupTestRouter()
	router.Use(RequestLogger(logger.NewNop()))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	router.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}

func TestTimeout_SetsDeadline(t *testing.T) {
	router := setupTestRouter()
	router.Use(Timeout(time.Second))
	router.GET("/test", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}
