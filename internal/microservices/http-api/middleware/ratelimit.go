package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per client IP. Idle buckets expire
// after ten minutes.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	mu      sync.Mutex
	clients *gocache.Cache
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: gocache.New(10*time.Minute, 20*time.Minute),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.clients.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.clients.SetDefault(key, lim) // refresh expiry
		return lim
	}
	lim := rate.NewLimiter(l.rps, l.burst)
	l.clients.SetDefault(key, lim)
	return lim
}

// Middleware answers 429 once a client has spent its burst.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.rps <= 0 {
			c.Next()
			return
		}
		lim := l.limiter(c.ClientIP())
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
