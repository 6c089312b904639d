package models

// Membership roles. The role is fixed at creation: the group creator becomes
// an admin, everyone who joins via invite becomes a member. There is no
// promotion path.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group represents a prayer group that members join via an invite code.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Fajr Club").
	Name string

	// InviteCode is the short random token used to join the group.
	// Globally unique and immutable once issued.
	InviteCode string

	// CreatedBy is the user ID of the group creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership links a user to a group. At most one membership exists per
// (group, user) pair; joining a group twice is a no-op.
type Membership struct {
	// GroupID is the group this membership belongs to.
	GroupID string

	// UserID is the member's user ID.
	UserID string

	// Role is either RoleAdmin or RoleMember.
	Role string

	// CreatedAt is the Unix timestamp when the user joined.
	CreatedAt int64
}
