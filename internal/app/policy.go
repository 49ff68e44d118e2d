package app

import "github.com/dkeye/TempVoice/internal/domain"

// Action names a management operation on a managed room.
type Action string

const (
	ActionRename     Action = "rename"
	ActionSetLimit   Action = "set_limit"
	ActionToggleLock Action = "toggle_lock"
	ActionToggleChat Action = "toggle_chat"
	ActionClaim      Action = "claim"
	ActionKick       Action = "kick"
	ActionDelete     Action = "delete"
	ActionWaiting    Action = "waiting"
	ActionTrust      Action = "trust"
	ActionUntrust    Action = "untrust"
	ActionInvite     Action = "invite"
	ActionBlock      Action = "block"
	ActionUnblock    Action = "unblock"
	ActionTransfer   Action = "transfer"
	ActionRegion     Action = "region"
)

// Reserved reports whether the action is recognised but not implemented.
func (a Action) Reserved() bool {
	switch a {
	case ActionWaiting, ActionTrust, ActionUntrust, ActionInvite,
		ActionBlock, ActionUnblock, ActionTransfer, ActionRegion:
		return true
	}
	return false
}

// Policy decides whether actor may perform action on room.
type Policy interface {
	Authorize(action Action, actor domain.UserID, room domain.ManagedRoom) error
}

// OwnerPolicy allows everything to the owner and only claim to anyone else.
type OwnerPolicy struct{}

func (OwnerPolicy) Authorize(action Action, actor domain.UserID, room domain.ManagedRoom) error {
	if action == ActionClaim {
		return nil
	}
	if room.OwnerID != actor {
		return domain.ErrNotOwner
	}
	return nil
}
