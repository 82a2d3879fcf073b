package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TenantLimiter hands out one token bucket per tenant. Buckets idle longer than
// the sweep interval are dropped.
type TenantLimiter struct {
	mu        sync.Mutex
	buckets   map[uuid.UUID]*tenantBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	sweep     time.Duration
}

type tenantBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTenantLimiter allows requests per window for each tenant, with the whole
// allowance available as burst.
func NewTenantLimiter(requests int, window time.Duration) *TenantLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &TenantLimiter{
		buckets: make(map[uuid.UUID]*tenantBucket),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		sweep:   10 * window,
	}
}

func (l *TenantLimiter) get(tenantID uuid.UUID, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.sweep {
		for id, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.sweep {
				delete(l.buckets, id)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[tenantID]
	if !ok {
		b = &tenantBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[tenantID] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Middleware rejects requests over the tenant's budget with 429 and a
// Retry-After hint. Must run after AuthMiddleware.
func (l *TenantLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil {
			abortUnauthorized(c, "tenant context required")
			return
		}

		now := time.Now()
		res := l.get(actor.TenantID, now).ReserveN(now, 1)
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   gin.H{"code": "RATE_LIMITED", "message": "too many draft requests; try again later"},
			})
			return
		}
		c.Next()
	}
}
