package app

import (
	"sync"

	"github.com/dkeye/TempVoice/internal/clock"
	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Hub fans lifecycle events out to subscribers. Slow subscribers lose
// events rather than stall the publisher.
type Hub struct {
	mu    sync.RWMutex
	subs  map[string]chan domain.Event
	clock core.Clock
}

func NewHub(clk core.Clock) *Hub {
	if clk == nil {
		clk = clock.Real()
	}
	return &Hub{subs: make(map[string]chan domain.Event), clock: clk}
}

// Subscribe registers a buffered subscriber. Call cancel to unsubscribe;
// the channel is closed afterwards.
func (h *Hub) Subscribe(buffer int) (<-chan domain.Event, func()) {
	id := uuid.NewString()
	ch := make(chan domain.Event, buffer)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			close(ch)
			h.mu.Unlock()
		})
	}
}

// Publish stamps ev and delivers it. It returns how many subscribers got it.
func (h *Hub) Publish(ev domain.Event) int {
	if h == nil {
		return 0
	}
	ev.ID = uuid.NewString()
	if ev.At.IsZero() {
		ev.At = h.clock.Now()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for id, ch := range h.subs {
		select {
		case ch <- ev:
			sent++
		default:
			log.Debug().Str("module", "app.hub").Str("sub", id).Str("kind", string(ev.Kind)).Msg("dropped event for slow subscriber")
		}
	}
	return sent
}
