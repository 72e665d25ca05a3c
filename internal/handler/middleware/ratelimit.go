package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"facility-booking/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL = 2 * time.Hour
	sweepEvery     = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per authenticated actor.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	burst    int
	limiters map[uuid.UUID]*limiterEntry
	now      func() time.Time

	lastSweep time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	perHour := max(cfg.BookingsPerHour, 1)
	return &RateLimiter{
		interval:  time.Hour / time.Duration(perHour),
		burst:     max(cfg.Burst, 1),
		limiters:  make(map[uuid.UUID]*limiterEntry),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

// Limit must run after RequireAuth.
func (r *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := GetActor(c)
		if !ok {
			c.Next()
			return
		}

		lim := r.limiterFor(a.ID)
		if !lim.AllowN(r.now(), 1) {
			c.Header("Retry-After", strconv.Itoa(int(r.interval.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"message": "Too many booking requests"},
			})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) limiterFor(id uuid.UUID) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	e, ok := r.limiters[id]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(r.interval), r.burst)}
		r.limiters[id] = e
	}
	e.lastSeen = now

	if now.Sub(r.lastSweep) >= sweepEvery {
		r.evictIdle(now)
	}
	return e.limiter
}

// evictIdle drops buckets unused for limiterIdleTTL; they would be full again anyway. Caller holds mu.
func (r *RateLimiter) evictIdle(now time.Time) {
	r.lastSweep = now
	for k, v := range r.limiters {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(r.limiters, k)
		}
	}
}
