package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the identity a request is limited by.
type KeyFunc func(c *gin.Context) string

// ClientIPKey limits by client address.
func ClientIPKey(c *gin.Context) string { return "ip:" + c.ClientIP() }

// PlayerKey limits by the :tg_id path parameter, falling back to the client
// address on routes without one.
func PlayerKey(c *gin.Context) string {
	if id := c.Param("tg_id"); id != "" {
		if _, err := strconv.ParseInt(id, 10, 64); err == nil {
			return "player:" + id
		}
	}
	return ClientIPKey(c)
}

const limiterIdle = 5 * time.Minute

type localLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// LocalLimiter is an in-process token bucket per key, used when Redis is
// not configured.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewLocalLimiter allows maxRequests per window with bursts up to maxRequests.
func NewLocalLimiter(maxRequests int, window time.Duration) *LocalLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &LocalLimiter{
		limiters: make(map[string]*localLimiter),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.limiters {
		if now.After(v.expires) {
			delete(l.limiters, k)
		}
	}

	ll, ok := l.limiters[key]
	if !ok {
		ll = &localLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = ll
	}
	ll.expires = now.Add(limiterIdle)
	return ll.limiter.AllowN(now, 1)
}

// LocalRateLimit blocks clients exceeding the limiter's budget.
func LocalRateLimit(l *LocalLimiter, key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(key(c)) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
