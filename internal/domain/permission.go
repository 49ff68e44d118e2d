package domain

// Permission is a platform-neutral permission bitset.
type Permission uint32

const (
	PermViewRoom Permission = 1 << iota
	PermConnect
	PermSpeak
	PermSendMessages
	PermManageRoom
	PermMoveMembers
	PermMuteMembers
	PermDeafenMembers
)

// OwnerPermissions are granted to the creator of a managed room.
const OwnerPermissions = PermManageRoom | PermMoveMembers | PermMuteMembers |
	PermDeafenMembers | PermConnect | PermSpeak

// Has reports whether every bit of q is set in p.
func (p Permission) Has(q Permission) bool { return p&q == q }

type TargetKind int

const (
	TargetEveryone TargetKind = iota
	TargetRole
	TargetMember
)

// Target is the subject of a permission overwrite. The everyone target has
// an empty ID; adapters map it to the platform's base role.
type Target struct {
	Kind TargetKind
	ID   string
}

var Everyone = Target{Kind: TargetEveryone}

func MemberTarget(id UserID) Target { return Target{Kind: TargetMember, ID: string(id)} }

// Overwrite is an allow/deny pair for one target on one room.
type Overwrite struct {
	Target Target
	Allow  Permission
	Deny   Permission
}

// Allows reports whether the overwrite leaves p effective. Without an
// explicit deny the permission is inherited, which the bot treats as allowed.
func (o Overwrite) Allows(p Permission) bool {
	return o.Deny&p == 0
}

// With returns the overwrite with p switched to allow or deny, leaving the
// other bits untouched.
func (o Overwrite) With(p Permission, allow bool) Overwrite {
	if allow {
		o.Allow |= p
		o.Deny &^= p
	} else {
		o.Deny |= p
		o.Allow &^= p
	}
	return o
}
