package events

import (
	"sync"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/keylock"
	"golang.org/x/time/rate"
)

// maxTrackedMembers is the size past which refilled limiters are dropped.
const maxTrackedMembers = 10_000

// Limiter throttles ticket creation presses per member. A nil Limiter allows everything.
type Limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	members map[string]*rate.Limiter
}

// NewLimiter allows perMinute presses per member and minute. A non-positive perMinute returns nil.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		return nil
	}
	return &Limiter{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		members: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the member may press now.
func (l *Limiter) Allow(guildID, memberID string) bool {
	if l == nil {
		return true
	}

	key := keylock.Key(guildID, memberID)

	l.mu.Lock()
	lim, ok := l.members[key]
	if !ok {
		if len(l.members) >= maxTrackedMembers {
			l.prune()
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.members[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// prune drops the limiters that are full again. Must be called with mu held.
func (l *Limiter) prune() {
	for key, lim := range l.members {
		if lim.Tokens() >= float64(l.burst) {
			delete(l.members, key)
		}
	}
}
