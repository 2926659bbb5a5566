package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorRegistry tracks one token bucket per client IP. Each limiter
// middleware instance owns its own registry so route groups don't share
// budgets.
type visitorRegistry struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func (r *visitorRegistry) get(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.rps, r.burst)}
		r.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

func (r *visitorRegistry) cleanup(ttl, interval time.Duration) {
	for {
		time.Sleep(interval)

		r.mu.Lock()
		for ip, v := range r.visitors {
			if time.Since(v.lastSeen) > ttl {
				delete(r.visitors, ip)
			}
		}
		r.mu.Unlock()
	}
}

func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	reg := &visitorRegistry{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(config.RequestsPerSecond),
		burst:    config.Burst,
	}

	go reg.cleanup(config.TTL, config.CleanupInterval)

	return func(c *gin.Context) {
		if !reg.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
