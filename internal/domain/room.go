package domain

import "time"

type (
	RoomID string
	UserID string
)

// RoomKind distinguishes the platform objects the bot touches.
type RoomKind int

const (
	KindVoice RoomKind = iota
	KindCategory
	KindText
)

// ManagedRoom is a bot-created voice room tracked as ours.
// Values are copied in and out of the registry; mutate through it.
type ManagedRoom struct {
	ID         RoomID     `json:"id"`
	OwnerID    UserID     `json:"owner_id"`
	CreatedAt  time.Time  `json:"created_at"`
	EmptySince *time.Time `json:"empty_since,omitempty"`
}

// Empty reports whether the grace window is running.
func (m ManagedRoom) Empty() bool { return m.EmptySince != nil }

// Expired reports whether the room has been empty for at least grace at now.
func (m ManagedRoom) Expired(now time.Time, grace time.Duration) bool {
	return m.EmptySince != nil && now.Sub(*m.EmptySince) >= grace
}

// Room is a platform snapshot of a room or category.
type Room struct {
	ID         RoomID
	Name       string
	Kind       RoomKind
	ParentID   RoomID
	UserLimit  int
	Overwrites []Overwrite
}

// Overwrite returns the overwrite for target, if the room carries one.
func (r *Room) Overwrite(target Target) (Overwrite, bool) {
	for _, ow := range r.Overwrites {
		if ow.Target == target {
			return ow, true
		}
	}
	return Overwrite{}, false
}

// RoomSpec describes a room to create.
type RoomSpec struct {
	Name       string
	ParentID   RoomID
	Kind       RoomKind
	Overwrites []Overwrite
}
