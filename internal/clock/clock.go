// Package clock provides the real and fake clocks behind core.Clock.
package clock

import (
	"sync"
	"time"

	"github.com/dkeye/TempVoice/internal/core"
)

// Real returns a clock backed by the time package.
func Real() core.Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake is a clock that only moves when told to. Safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	current time.Time
}

func NewFake(initial time.Time) *Fake {
	return &Fake{current: initial}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}
