package app

import (
	"slices"
	"sync"
	"time"

	"github.com/dkeye/TempVoice/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps managed room ids to their ownership record. It is the only
// store of which rooms are ours; the lifecycle controller and the sweeper
// are its only writers.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.ManagedRoom

	// serial orders multi-step operations (check, call the platform,
	// write back) between event handlers and the sweeper.
	serial sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*domain.ManagedRoom)}
}

// Exclusive runs fn while no other Exclusive section runs. Must not nest.
func (r *Registry) Exclusive(fn func()) {
	r.serial.Lock()
	defer r.serial.Unlock()
	fn()
}

func (r *Registry) Get(id domain.RoomID) (domain.ManagedRoom, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rooms[id]
	if !ok {
		return domain.ManagedRoom{}, false
	}
	return clone(m), true
}

func (r *Registry) Put(m domain.ManagedRoom) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := clone(&m)
	r.rooms[m.ID] = &c
	log.Info().Str("module", "app.registry").Str("room", string(m.ID)).Str("owner", string(m.OwnerID)).Msg("tracked room")
}

// Remove drops the entry and reports whether it existed.
func (r *Registry) Remove(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("untracked room")
	return true
}

// FindByOwner scans for the room owned by user. A claim can leave a user
// owning several rooms; the oldest one wins. The registry stays small,
// bounded by concurrently active voice users.
func (r *Registry) FindByOwner(user domain.UserID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.ManagedRoom
	for _, m := range r.rooms {
		if m.OwnerID == user && (best == nil || older(m, best)) {
			best = m
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

func older(a, b *domain.ManagedRoom) bool {
	return compareAge(*a, *b) < 0
}

func compareAge(a, b domain.ManagedRoom) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// All returns a snapshot of every entry, oldest first.
func (r *Registry) All() []domain.ManagedRoom {
	r.mu.RLock()
	out := make([]domain.ManagedRoom, 0, len(r.rooms))
	for _, m := range r.rooms {
		out = append(out, clone(m))
	}
	r.mu.RUnlock()
	slices.SortFunc(out, compareAge)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) SetOwner(id domain.RoomID, owner domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rooms[id]
	if !ok {
		return false
	}
	m.OwnerID = owner
	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("owner", string(owner)).Msg("updated owner")
	return true
}

// MarkEmpty starts the grace window at t unless it already runs.
// It reports whether the window was started by this call.
func (r *Registry) MarkEmpty(id domain.RoomID, t time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rooms[id]
	if !ok || m.EmptySince != nil {
		return false
	}
	m.EmptySince = &t
	return true
}

// MarkOccupied clears the grace window and reports whether one was running.
func (r *Registry) MarkOccupied(id domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rooms[id]
	if !ok || m.EmptySince == nil {
		return false
	}
	m.EmptySince = nil
	return true
}

func clone(m *domain.ManagedRoom) domain.ManagedRoom {
	out := *m
	if m.EmptySince != nil {
		t := *m.EmptySince
		out.EmptySince = &t
	}
	return out
}
