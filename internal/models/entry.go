package models

// Entry is one signed transaction in a room's ledger.
//
// Entries are append-only. The only permitted deletion is a same-member undo
// of the most recent entry within the undo window.
type Entry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// RoomCode identifies the room whose ledger holds this entry.
	RoomCode string

	// UserID is the member who wrote the entry.
	UserID string

	// DisplayName is a snapshot of the member's name at write time.
	// It is intentionally denormalized so history and leaderboard reads
	// need no join; a later rename leaves old entries untouched.
	DisplayName string

	// Delta is the signed amount. The primary client flow only ever sends
	// +1 or -1; the generic ledger accepts any integer.
	Delta int

	// Label is optional free text attached by the member.
	Label string

	// CreatedAt is the server-assigned Unix timestamp in milliseconds.
	CreatedAt int64
}

// WeeklyFocus holds the 2-3 focus areas a member commits to for one week.
// Immutable once written for a given (room, user, week key).
type WeeklyFocus struct {
	RoomCode string
	UserID   string

	// WeekKey is the Monday date (YYYY-MM-DD) of the aggregation window.
	WeekKey string

	// Areas is the ordered, deduplicated list of focus labels.
	Areas []string

	// Locked is always true once written.
	Locked bool

	// CreatedAt is the Unix timestamp when the focus was set.
	CreatedAt int64
}

// Event is a best-effort audit record. Writes to the event log never block
// or fail the primary operation that produced them.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Type names the lifecycle change, e.g. "room_created", "entry_added".
	Type string

	// RoomCode and UserID scope the event; either may be empty.
	RoomCode string
	UserID   string

	// Payload is a JSON object with event-specific detail.
	Payload string

	// CreatedAt is the Unix timestamp when the event was recorded.
	CreatedAt int64
}
