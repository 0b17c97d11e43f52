package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per client key (the login email here).
// Idle clients are dropped after the expiry so the map cannot grow without
// bound.
type Limiter struct {
	expiry   time.Duration
	burst    int
	limitRPS float64
	clients  map[string]*clientLimiter
	mu       sync.Mutex
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLimiter(burst int, expiry time.Duration, limitRPS float64) *Limiter {
	lm := &Limiter{
		expiry:   expiry,
		limitRPS: limitRPS,
		burst:    burst,
		clients:  make(map[string]*clientLimiter),
	}
	go lm.refresh()
	return lm
}

func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cl, ok := l.clients[id]
	if !ok {
		l.clients[id] = &clientLimiter{
			limiter:    rate.NewLimiter(rate.Limit(l.limitRPS), l.burst),
			lastAccess: time.Now(),
		}
		return l.clients[id].limiter.Allow()
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (l *Limiter) refresh() {
	for {
		time.Sleep(time.Minute)

		l.mu.Lock()
		for id, v := range l.clients {
			if time.Since(v.lastAccess) > l.expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

func every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
