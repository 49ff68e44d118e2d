// Package coretest provides an in-memory core.Gateway for tests.
package coretest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dkeye/TempVoice/internal/core"
	"github.com/dkeye/TempVoice/internal/domain"
)

var ErrMemberNotFound = errors.New("member not found")

// FakeGateway keeps rooms and members in maps and records every call.
// Failures can be injected per method name.
type FakeGateway struct {
	mu      sync.Mutex
	rooms   map[domain.RoomID]*domain.Room
	members map[domain.UserID]*domain.Member
	fail    map[string]error
	calls   map[string]int
	nextID  int
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		rooms:   make(map[domain.RoomID]*domain.Room),
		members: make(map[domain.UserID]*domain.Member),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

// AddRoom seeds a room as if it already existed on the platform.
func (g *FakeGateway) AddRoom(room domain.Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := room
	r.Overwrites = slices.Clone(room.Overwrites)
	g.rooms[room.ID] = &r
}

// AddMember seeds a member, not connected to voice.
func (g *FakeGateway) AddMember(id domain.UserID, name string, bot bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[id] = &domain.Member{ID: id, DisplayName: name, Bot: bot}
}

// Connect places a member in a room without going through MoveMember,
// the way a user joining by hand would. A nil room disconnects.
func (g *FakeGateway) Connect(user domain.UserID, room *domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if m, ok := g.members[user]; ok {
		m.RoomID = copyID(room)
	}
}

// Vanish removes a room behind the bot's back.
func (g *FakeGateway) Vanish(id domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropRoom(id)
}

// Fail makes every later call of method return err; nil clears it.
func (g *FakeGateway) Fail(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.fail, method)
		return
	}
	g.fail[method] = err
}

// Calls reports how many times method was invoked.
func (g *FakeGateway) Calls(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

// HasRoom reports whether the platform still has the room.
func (g *FakeGateway) HasRoom(id domain.RoomID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.rooms[id]
	return ok
}

// RoomOf returns the room a member sits in, if any.
func (g *FakeGateway) RoomOf(user domain.UserID) (domain.RoomID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.members[user]
	if !ok || m.RoomID == nil {
		return "", false
	}
	return *m.RoomID, true
}

// Room returns a copy of a stored room.
func (g *FakeGateway) Room(id domain.RoomID) (domain.Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	out := *r
	out.Overwrites = slices.Clone(r.Overwrites)
	return out, true
}

func (g *FakeGateway) enter(method string) error {
	g.calls[method]++
	return g.fail[method]
}

func (g *FakeGateway) dropRoom(id domain.RoomID) {
	delete(g.rooms, id)
	for _, m := range g.members {
		if m.RoomID != nil && *m.RoomID == id {
			m.RoomID = nil
		}
	}
}

func (g *FakeGateway) CreateRoom(_ context.Context, spec domain.RoomSpec) (domain.RoomID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("CreateRoom"); err != nil {
		return "", err
	}
	g.nextID++
	id := domain.RoomID(fmt.Sprintf("room-%d", g.nextID))
	g.rooms[id] = &domain.Room{
		ID:         id,
		Name:       spec.Name,
		Kind:       spec.Kind,
		ParentID:   spec.ParentID,
		Overwrites: slices.Clone(spec.Overwrites),
	}
	return id, nil
}

func (g *FakeGateway) DeleteRoom(_ context.Context, id domain.RoomID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("DeleteRoom"); err != nil {
		return err
	}
	g.dropRoom(id)
	return nil
}

func (g *FakeGateway) MoveMember(_ context.Context, user domain.UserID, room *domain.RoomID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("MoveMember"); err != nil {
		return err
	}
	m, ok := g.members[user]
	if !ok {
		return ErrMemberNotFound
	}
	if room != nil {
		if _, ok := g.rooms[*room]; !ok {
			return core.ErrRoomNotFound
		}
	}
	m.RoomID = copyID(room)
	return nil
}

func (g *FakeGateway) FetchRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("FetchRoom"); err != nil {
		return nil, err
	}
	r, ok := g.rooms[id]
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	out := *r
	out.Overwrites = slices.Clone(r.Overwrites)
	return &out, nil
}

func (g *FakeGateway) ListRooms(_ context.Context, parent domain.RoomID) ([]domain.Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("ListRooms"); err != nil {
		return nil, err
	}
	var out []domain.Room
	for _, r := range g.rooms {
		if r.ParentID == parent {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b domain.Room) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (g *FakeGateway) EditRoomPermissions(_ context.Context, id domain.RoomID, ow domain.Overwrite) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("EditRoomPermissions"); err != nil {
		return err
	}
	r, ok := g.rooms[id]
	if !ok {
		return core.ErrRoomNotFound
	}
	for i := range r.Overwrites {
		if r.Overwrites[i].Target == ow.Target {
			r.Overwrites[i] = ow
			return nil
		}
	}
	r.Overwrites = append(r.Overwrites, ow)
	return nil
}

func (g *FakeGateway) EditRoomName(_ context.Context, id domain.RoomID, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("EditRoomName"); err != nil {
		return err
	}
	r, ok := g.rooms[id]
	if !ok {
		return core.ErrRoomNotFound
	}
	r.Name = name
	return nil
}

func (g *FakeGateway) EditRoomLimit(_ context.Context, id domain.RoomID, limit int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("EditRoomLimit"); err != nil {
		return err
	}
	r, ok := g.rooms[id]
	if !ok {
		return core.ErrRoomNotFound
	}
	r.UserLimit = limit
	return nil
}

func (g *FakeGateway) RoomOccupants(_ context.Context, id domain.RoomID) ([]domain.UserID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("RoomOccupants"); err != nil {
		return nil, err
	}
	if _, ok := g.rooms[id]; !ok {
		return nil, core.ErrRoomNotFound
	}
	var out []domain.UserID
	for uid, m := range g.members {
		if m.RoomID != nil && *m.RoomID == id {
			out = append(out, uid)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (g *FakeGateway) FetchMember(_ context.Context, id domain.UserID) (*domain.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.enter("FetchMember"); err != nil {
		return nil, err
	}
	m, ok := g.members[id]
	if !ok {
		return nil, ErrMemberNotFound
	}
	out := *m
	out.RoomID = copyID(m.RoomID)
	return &out, nil
}

func copyID(id *domain.RoomID) *domain.RoomID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

var _ core.Gateway = (*FakeGateway)(nil)
