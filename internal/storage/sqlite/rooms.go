package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
)

// CreateRoom inserts a new room. Returns storage.ErrAlreadyExists if the code
// is taken, so a racing double-create can fall back to a fresh lookup.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (code, creator_id, locked, invite_only, invite_code, max_members, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			room.Code,
			room.CreatorID,
			boolToInt(room.Locked),
			boolToInt(room.InviteOnly),
			room.InviteCode,
			room.MaxMembers,
			room.CreatedAt,
		)
		return err
	})

	if isUniqueViolation(err, "rooms") {
		return storage.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// GetRoom retrieves a room by its code. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	query := `
		SELECT code, creator_id, locked, invite_only, invite_code, max_members, created_at
		FROM rooms
		WHERE code = ?
	`

	room := &models.Room{}
	var locked, inviteOnly int
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&room.Code,
		&room.CreatorID,
		&locked,
		&inviteOnly,
		&room.InviteCode,
		&room.MaxMembers,
		&room.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Room not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.Locked = locked != 0
	room.InviteOnly = inviteOnly != 0
	return room, nil
}

// UpdateRoomSettings persists the mutable room fields (locked, invite-only,
// max members). Code, creator and invite code are immutable here: the invite
// code survives invite-only toggles unchanged.
func (s *SQLiteStore) UpdateRoomSettings(ctx context.Context, room *models.Room) error {
	query := `
		UPDATE rooms
		SET locked = ?, invite_only = ?, max_members = ?
		WHERE code = ?
	`

	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			boolToInt(room.Locked),
			boolToInt(room.InviteOnly),
			room.MaxMembers,
			room.Code,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update room settings: %w", err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
