package app

import (
	"sync"
	"time"

	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
)

// JoinLimiter is a per-user sliding-window limiter.
type JoinLimiter struct {
	mu       sync.Mutex
	history  map[domain.UserID][]time.Time
	limit    int
	interval time.Duration
	clock    core.Clock
}

// NewJoinLimiter allows limit attempts per interval; limit <= 0 disables it.
func NewJoinLimiter(limit int, interval time.Duration, clock core.Clock) *JoinLimiter {
	return &JoinLimiter{
		history:  make(map[domain.UserID][]time.Time),
		limit:    limit,
		interval: interval,
		clock:    clock,
	}
}

func (rl *JoinLimiter) Allow(uid domain.UserID) bool {
	if rl == nil || rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[uid]
	fresh := make([]time.Time, 0, len(attempts)+1)
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[uid] = fresh
		return false
	}

	rl.history[uid] = append(fresh, now)
	return true
}

// Forget drops history older than the window for every user.
func (rl *JoinLimiter) Forget() {
	if rl == nil {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	windowStart := rl.clock.Now().Add(-rl.interval)
	for uid, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, uid)
		}
	}
}
