package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-client limiter is kept.
const limiterIdleTTL = 15 * time.Minute

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute int
	now       func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with an equal burst.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		perMinute: perMinute,
		now:       time.Now,
	}
}

// Handler rejects over-limit requests with 429.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.perMinute <= 0 {
			c.Next()
			return
		}
		if !l.allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(time.Minute.Seconds())/l.perMinute+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[key]
	if !ok {
		l.evictIdle(now)
		interval := time.Minute / time.Duration(l.perMinute)
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(interval), l.perMinute)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evictIdle drops limiters nobody has used recently. Caller holds mu.
func (l *RateLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
}
