package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/christinepetrosyan/Timebook/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket per client. Authenticated callers are
// keyed by user id, anonymous ones by remote IP.
type RateLimitMiddleware struct {
	rps   rate.Limit
	burst int
	log   *logrus.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

func NewRateLimitMiddleware(rps float64, burst int, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
		limiters: make(map[string]*clientLimiter),
	}
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !m.getLimiter(key, time.Now()).Allow() {
			m.log.Warnf("Rate limit exceeded for %s", key)
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) getLimiter(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, cl := range m.limiters {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(m.limiters, k)
		}
	}

	cl, ok := m.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func clientKey(r *http.Request) string {
	if userID, ok := GetUserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
