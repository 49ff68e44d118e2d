package domain

// Member is a community member as seen by the platform.
type Member struct {
	ID          UserID
	DisplayName string
	Bot         bool
	// RoomID is the voice room the member currently occupies, nil if none.
	RoomID *RoomID
}

// In reports whether the member currently occupies room.
func (m *Member) In(room RoomID) bool {
	return m != nil && m.RoomID != nil && *m.RoomID == room
}

// MembershipChange is one voice-state transition for one user.
type MembershipChange struct {
	UserID      UserID
	DisplayName string
	Bot         bool
	OldRoomID   *RoomID
	NewRoomID   *RoomID
}

// Joined reports whether the change moved the user into room.
func (c MembershipChange) Joined(room RoomID) bool {
	return c.NewRoomID != nil && *c.NewRoomID == room &&
		(c.OldRoomID == nil || *c.OldRoomID != room)
}

// Left reports whether the change moved the user out of room.
func (c MembershipChange) Left(room RoomID) bool {
	return c.OldRoomID != nil && *c.OldRoomID == room &&
		(c.NewRoomID == nil || *c.NewRoomID != room)
}
