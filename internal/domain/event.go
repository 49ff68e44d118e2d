package domain

import "time"

type EventKind string

const (
	EventRoomCreated   EventKind = "room_created"
	EventRoomReused    EventKind = "room_reused"
	EventRoomDeleted   EventKind = "room_deleted"
	EventRoomReclaimed EventKind = "room_reclaimed"
	EventRoomPurged    EventKind = "room_purged"
	EventRoomAdopted   EventKind = "room_adopted"
	EventRoomEmpty     EventKind = "room_empty"
	EventRoomOccupied  EventKind = "room_occupied"
	EventOwnerClaimed  EventKind = "owner_claimed"
	EventRoomUpdated   EventKind = "room_updated"
)

// Event is a lifecycle notification fanned out to observers.
type Event struct {
	ID     string    `json:"id"`
	Kind   EventKind `json:"kind"`
	RoomID RoomID    `json:"room_id"`
	UserID UserID    `json:"user_id,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}
