package middleware

import (
	"net/http"
	"sync"
	"time"

	"shecare/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets idle long
// enough to have refilled completely are dropped on the next sweep, since a
// fresh bucket behaves the same.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	logger    *zap.Logger
}

func NewRateLimiter(perMinute, burst int, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	idle := interval * time.Duration(burst)
	if idle < time.Minute {
		idle = time.Minute
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Every(interval),
		burst:    burst,
		idleTTL:  idle,
		now:      time.Now,
		logger:   logger,
	}
}

func (l *RateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	cl, ok := l.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep must be called with mu held.
func (l *RateLimiter) sweep(now time.Time) {
	for ip, cl := range l.limiters {
		if now.Sub(cl.lastSeen) >= l.idleTTL {
			delete(l.limiters, ip)
		}
	}
	l.lastSweep = now
}

// Len reports how many client buckets are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.get(ip).Allow() {
			l.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			response.Abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded. Try again later.")
			return
		}
		c.Next()
	}
}
