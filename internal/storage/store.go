// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/rferrer/steady/internal/models"
)

// ErrAlreadyExists is returned when an insert collides with an existing row
// protected by a uniqueness constraint (room code, member name, focus key).
var ErrAlreadyExists = errors.New("already exists")

// EventFilter selects audit events. Zero-valued fields are ignored; filters
// combine as AND. Limit is clamped by the store (default 100, max 500).
type EventFilter struct {
	RoomCode string
	Type     string
	Limit    int
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookup methods return (nil, nil) when the row does not exist; callers decide
// whether absence is an error.
type Store interface {
	// Rooms.
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	UpdateRoomSettings(ctx context.Context, room *models.Room) error

	// Members.
	UpsertMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, roomCode, userID string) (*models.Member, error)
	GetMemberByName(ctx context.Context, roomCode, normalizedName string) (*models.Member, error)
	ListMembers(ctx context.Context, roomCode string) ([]models.Member, error)
	CountMembers(ctx context.Context, roomCode string) (int, error)
	TouchMember(ctx context.Context, roomCode, userID string, seenAt int64) error
	DeleteMember(ctx context.Context, roomCode, userID string) error

	// Entries.
	AppendEntry(ctx context.Context, entry *models.Entry) error
	LatestEntry(ctx context.Context, roomCode, userID string) (*models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, roomCode string, fromMillis, toMillis int64) ([]models.Entry, error)
	ListMemberEntries(ctx context.Context, roomCode, userID string, sinceMillis int64) ([]models.Entry, error)
	CountMemberEntries(ctx context.Context, roomCode, userID string) (int, error)

	// Weekly focus.
	CreateFocus(ctx context.Context, focus *models.WeeklyFocus) error
	GetFocus(ctx context.Context, roomCode, userID, weekKey string) (*models.WeeklyFocus, error)

	// Audit events.
	AppendEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, error)

	// Close releases any resources held by the store.
	Close() error
}
