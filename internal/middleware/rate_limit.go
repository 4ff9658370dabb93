package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdleTTL is how long a key may go unseen before its limiter
// is dropped.
const DefaultLimiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type KeyedRateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	r         rate.Limit // requests per second
	b         int        // burst
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type KeyedRateLimiterOption func(*KeyedRateLimiter)

// WithIdleTTL overrides DefaultLimiterIdleTTL. The TTL never drops below the
// time an empty bucket needs to refill, so eviction cannot grant extra burst.
func WithIdleTTL(ttl time.Duration) KeyedRateLimiterOption {
	return func(k *KeyedRateLimiter) { k.idleTTL = ttl }
}

func WithClock(now func() time.Time) KeyedRateLimiterOption {
	return func(k *KeyedRateLimiter) { k.now = now }
}

func NewKeyedRateLimiter(r rate.Limit, b int, opts ...KeyedRateLimiterOption) *KeyedRateLimiter {
	k := &KeyedRateLimiter{
		limiters: make(map[string]*limiterEntry),
		r:        r,
		b:        b,
		idleTTL:  DefaultLimiterIdleTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	if r > 0 && r != rate.Inf {
		if refill := time.Duration(float64(b) / float64(r) * float64(time.Second)); refill > k.idleTTL {
			k.idleTTL = refill
		}
	}
	k.lastSweep = k.now()
	return k
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= k.idleTTL {
		k.sweep(now)
	}

	entry, exists := k.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.r, k.b)}
		k.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// Len reports how many keys are currently tracked.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// sweep must be called with k.mu held.
func (k *KeyedRateLimiter) sweep(now time.Time) {
	for key, entry := range k.limiters {
		if now.Sub(entry.lastSeen) >= k.idleTTL {
			delete(k.limiters, key)
		}
	}
	k.lastSweep = now
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeTooManyRequests, "Too many requests from this IP")
			return
		}
		c.Next()
	}
}

// RateLimitByUser limits authenticated callers by user id. Anonymous requests pass through.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		userID := c.GetInt64(CtxUserID)
		if userID == 0 {
			c.Next()
			return
		}
		if !limiter.GetLimiter(strconv.FormatInt(userID, 10)).Allow() {
			response.Abort(c, http.StatusTooManyRequests, apperror.CodeTooManyRequests, "Too many requests from this user")
			return
		}
		c.Next()
	}
}
