package models

// Room represents an isolated ledger namespace.
//
// A room is created on the first admission request for a previously-unseen
// code and is never deleted. The code is immutable once created.
type Room struct {
	// Code is the short uppercase alphanumeric identifier (3-12 chars),
	// globally unique.
	Code string

	// CreatorID is the opaque user ID of whoever first admitted the room.
	// Only the creator may change room settings.
	CreatorID string

	// Locked closes the room to new members. Existing members keep writing.
	Locked bool

	// InviteOnly requires InviteCode on join for everyone but the creator.
	InviteOnly bool

	// InviteCode is generated once at creation and held in reserve; toggling
	// InviteOnly off and on again reuses the same code.
	InviteCode string

	// MaxMembers caps the member count (default 50, bounded 1-200).
	MaxMembers int

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64
}

// Member represents one user's membership in a room.
//
// Exactly one row exists per (room, user ID) and per (room, normalized
// display name): a second user ID may not claim a name already owned by a
// different ID in the same room.
type Member struct {
	// RoomCode identifies the room this membership belongs to.
	RoomCode string

	// UserID is the caller-supplied opaque identifier.
	UserID string

	// DisplayName is the name shown to other members.
	DisplayName string

	// NormalizedName is DisplayName trimmed, whitespace-folded and
	// lowercased; the unit of per-room name uniqueness.
	NormalizedName string

	// JoinedAt is the Unix timestamp of the first successful join.
	JoinedAt int64

	// LastSeenAt is advisory: updated on every ledger write by this member,
	// not guaranteed atomic with the write itself.
	LastSeenAt int64
}
