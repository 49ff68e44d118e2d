package app

import (
	"errors"
	"testing"
	"time"

	"github.com/dkeye/TempVoice/internal/clock"
	"github.com/dkeye/TempVoice/internal/domain"
)

func TestOwnerPolicy(t *testing.T) {
	room := domain.ManagedRoom{ID: "r", OwnerID: "a"}
	var p OwnerPolicy
	if err := p.Authorize(ActionRename, "a", room); err != nil {
		t.Fatalf("owner rename: %v", err)
	}
	if err := p.Authorize(ActionRename, "b", room); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("non-owner rename = %v, want ErrNotOwner", err)
	}
	if err := p.Authorize(ActionClaim, "b", room); err != nil {
		t.Fatalf("non-owner claim: %v", err)
	}
	if err := p.Authorize(ActionTransfer, "b", room); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("non-owner transfer = %v, want ErrNotOwner", err)
	}
}

func TestActionReserved(t *testing.T) {
	for _, a := range []Action{ActionTrust, ActionRegion, ActionTransfer, ActionWaiting} {
		if !a.Reserved() {
			t.Errorf("%s not reserved", a)
		}
	}
	for _, a := range []Action{ActionRename, ActionClaim, ActionDelete, ActionKick} {
		if a.Reserved() {
			t.Errorf("%s reserved", a)
		}
	}
}

func TestJoinLimiterWindow(t *testing.T) {
	c := clock.NewFake(epoch)
	rl := NewJoinLimiter(2, 10*time.Second, c)

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two joins denied")
	}
	if rl.Allow("a") {
		t.Fatal("third join inside window allowed")
	}
	if !rl.Allow("b") {
		t.Fatal("other user throttled")
	}
	c.Advance(11 * time.Second)
	if !rl.Allow("a") {
		t.Fatal("join after window denied")
	}
	c.Advance(time.Minute)
	rl.Forget()
	rl.mu.Lock()
	n := len(rl.history)
	rl.mu.Unlock()
	if n != 0 {
		t.Fatalf("Forget left %d users", n)
	}
}

func TestJoinLimiterDisabled(t *testing.T) {
	rl := NewJoinLimiter(0, time.Second, clock.NewFake(epoch))
	for range 100 {
		if !rl.Allow("a") {
			t.Fatal("disabled limiter denied")
		}
	}
	var nilLimiter *JoinLimiter
	if !nilLimiter.Allow("a") {
		t.Fatal("nil limiter denied")
	}
}

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub(clock.NewFake(epoch))
	ch, cancel := h.Subscribe(1)

	if n := h.Publish(domain.Event{Kind: domain.EventRoomCreated, RoomID: "r"}); n != 1 {
		t.Fatalf("Publish delivered to %d, want 1", n)
	}
	// buffer full: dropped, not blocked
	if n := h.Publish(domain.Event{Kind: domain.EventRoomDeleted, RoomID: "r"}); n != 0 {
		t.Fatalf("Publish to full subscriber delivered %d", n)
	}
	ev := <-ch
	if ev.Kind != domain.EventRoomCreated || ev.ID == "" || !ev.At.Equal(epoch) {
		t.Fatalf("event = %+v", ev)
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel open after cancel")
	}
	if n := h.Publish(domain.Event{Kind: domain.EventRoomCreated}); n != 0 {
		t.Fatalf("Publish after cancel delivered %d", n)
	}
}
