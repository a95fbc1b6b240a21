package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-chat limiter is kept.
const limiterIdleTTL = time.Hour

type chatLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// chatLimiter throttles inbound messages per chat ID.
type chatLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*chatLimiterEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// newChatLimiter returns nil when limit is not positive, which disables throttling.
func newChatLimiter(limit float64, burst int) *chatLimiter {
	if limit <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &chatLimiter{
		limiters:  make(map[string]*chatLimiterEntry),
		limit:     rate.Limit(limit),
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether chatID may send another message now.
func (l *chatLimiter) Allow(chatID string) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdleTTL {
		for id, e := range l.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.limiters, id)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.limiters[chatID]
	if !ok {
		e = &chatLimiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[chatID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *chatLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
