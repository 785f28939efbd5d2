package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
)

// UpsertMember inserts a membership row or, when the (room, user) pair
// already exists, updates name and last-seen. A collision on the normalized
// name (a different user already owns it) surfaces as storage.ErrAlreadyExists.
func (s *SQLiteStore) UpsertMember(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (room_code, user_id, display_name, normalized_name, joined_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(room_code, user_id) DO UPDATE SET
			display_name = excluded.display_name,
			normalized_name = excluded.normalized_name,
			last_seen_at = excluded.last_seen_at
	`

	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			member.RoomCode,
			member.UserID,
			member.DisplayName,
			member.NormalizedName,
			member.JoinedAt,
			member.LastSeenAt,
		)
		return err
	})

	if isUniqueViolation(err, "members") {
		return storage.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

// GetMember retrieves a membership by (room, user ID). Returns (nil, nil)
// when absent.
func (s *SQLiteStore) GetMember(ctx context.Context, roomCode, userID string) (*models.Member, error) {
	query := `
		SELECT room_code, user_id, display_name, normalized_name, joined_at, last_seen_at
		FROM members
		WHERE room_code = ? AND user_id = ?
	`

	return s.scanMember(s.db.QueryRowContext(ctx, query, roomCode, userID))
}

// GetMemberByName retrieves a membership by (room, normalized display name).
// Returns (nil, nil) when no member owns the name.
func (s *SQLiteStore) GetMemberByName(ctx context.Context, roomCode, normalizedName string) (*models.Member, error) {
	query := `
		SELECT room_code, user_id, display_name, normalized_name, joined_at, last_seen_at
		FROM members
		WHERE room_code = ? AND normalized_name = ?
	`

	return s.scanMember(s.db.QueryRowContext(ctx, query, roomCode, normalizedName))
}

func (s *SQLiteStore) scanMember(row *sql.Row) (*models.Member, error) {
	member := &models.Member{}
	err := row.Scan(
		&member.RoomCode,
		&member.UserID,
		&member.DisplayName,
		&member.NormalizedName,
		&member.JoinedAt,
		&member.LastSeenAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Member not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// ListMembers returns all members of a room ordered by join time.
func (s *SQLiteStore) ListMembers(ctx context.Context, roomCode string) ([]models.Member, error) {
	query := `
		SELECT room_code, user_id, display_name, normalized_name, joined_at, last_seen_at
		FROM members
		WHERE room_code = ?
		ORDER BY joined_at, user_id
	`

	rows, err := s.db.QueryContext(ctx, query, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(
			&m.RoomCode,
			&m.UserID,
			&m.DisplayName,
			&m.NormalizedName,
			&m.JoinedAt,
			&m.LastSeenAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// CountMembers returns the number of members in a room.
func (s *SQLiteStore) CountMembers(ctx context.Context, roomCode string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members WHERE room_code = ?",
		roomCode,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// TouchMember updates a member's last-seen timestamp. Advisory only: not
// atomic with the ledger write that triggered it.
func (s *SQLiteStore) TouchMember(ctx context.Context, roomCode, userID string, seenAt int64) error {
	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			"UPDATE members SET last_seen_at = ? WHERE room_code = ? AND user_id = ?",
			seenAt, roomCode, userID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to touch member: %w", err)
	}
	return nil
}

// DeleteMember removes a membership row unconditionally. Confirmation
// semantics live in the service layer; this is the only deletion path for
// member rows. The member's entries are retained.
func (s *SQLiteStore) DeleteMember(ctx context.Context, roomCode, userID string) error {
	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM members WHERE room_code = ? AND user_id = ?",
			roomCode, userID,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}
