package core

import (
	"context"
	"errors"

	"github.com/dkeye/TempVoice/internal/domain"
)

//go:generate mockgen -source=gateway_iface.go -destination=mocks/gateway_mock.go -package=mocks

// ErrRoomNotFound is returned by Gateway calls on a room the platform no
// longer has.
var ErrRoomNotFound = errors.New("room not found")

// Gateway is the narrow view of the chat platform the lifecycle code uses.
// Implementations bound every call with their own timeout.
type Gateway interface {
	CreateRoom(ctx context.Context, spec domain.RoomSpec) (domain.RoomID, error)
	// DeleteRoom succeeds when the room is already gone.
	DeleteRoom(ctx context.Context, id domain.RoomID) error
	// MoveMember moves user into room; a nil room disconnects.
	MoveMember(ctx context.Context, user domain.UserID, room *domain.RoomID) error
	FetchRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	ListRooms(ctx context.Context, parent domain.RoomID) ([]domain.Room, error)
	EditRoomPermissions(ctx context.Context, id domain.RoomID, ow domain.Overwrite) error
	EditRoomName(ctx context.Context, id domain.RoomID, name string) error
	EditRoomLimit(ctx context.Context, id domain.RoomID, limit int) error
	RoomOccupants(ctx context.Context, id domain.RoomID) ([]domain.UserID, error)
	FetchMember(ctx context.Context, id domain.UserID) (*domain.Member, error)
}
