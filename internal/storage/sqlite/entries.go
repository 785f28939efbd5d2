package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rferrer/steady/internal/models"
)

// AppendEntry persists a new ledger entry. Generates an ID if not set.
func (s *SQLiteStore) AppendEntry(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO entries (id, room_code, user_id, display_name, delta, label, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			entry.ID,
			entry.RoomCode,
			entry.UserID,
			entry.DisplayName,
			entry.Delta,
			entry.Label,
			entry.CreatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	return nil
}

// LatestEntry returns the member's most recent entry in the room, or
// (nil, nil) if the member has none. Entries created in the same millisecond
// are ordered by insertion (rowid).
func (s *SQLiteStore) LatestEntry(ctx context.Context, roomCode, userID string) (*models.Entry, error) {
	query := `
		SELECT id, room_code, user_id, display_name, delta, label, created_at
		FROM entries
		WHERE room_code = ? AND user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`

	entry := &models.Entry{}
	err := s.db.QueryRowContext(ctx, query, roomCode, userID).Scan(
		&entry.ID,
		&entry.RoomCode,
		&entry.UserID,
		&entry.DisplayName,
		&entry.Delta,
		&entry.Label,
		&entry.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // No entries yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest entry: %w", err)
	}

	return entry, nil
}

// DeleteEntry removes a single entry by ID. The service layer restricts this
// to the undo path.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	err := execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

// ListEntries returns all entries in a room with fromMillis <= created_at <
// toMillis, in chronological order. Used by the weekly aggregator.
func (s *SQLiteStore) ListEntries(ctx context.Context, roomCode string, fromMillis, toMillis int64) ([]models.Entry, error) {
	query := `
		SELECT id, room_code, user_id, display_name, delta, label, created_at
		FROM entries
		WHERE room_code = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at, rowid
	`

	return s.queryEntries(ctx, query, roomCode, fromMillis, toMillis)
}

// ListMemberEntries returns one member's entries since the given time, in
// chronological order. The privacy boundary: members only ever read their own
// raw entries.
func (s *SQLiteStore) ListMemberEntries(ctx context.Context, roomCode, userID string, sinceMillis int64) ([]models.Entry, error) {
	query := `
		SELECT id, room_code, user_id, display_name, delta, label, created_at
		FROM entries
		WHERE room_code = ? AND user_id = ? AND created_at >= ?
		ORDER BY created_at, rowid
	`

	return s.queryEntries(ctx, query, roomCode, userID, sinceMillis)
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...any) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(
			&e.ID,
			&e.RoomCode,
			&e.UserID,
			&e.DisplayName,
			&e.Delta,
			&e.Label,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// CountMemberEntries returns how many entries the member has in the room
// across all time. Used by the leave preview.
func (s *SQLiteStore) CountMemberEntries(ctx context.Context, roomCode, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE room_code = ? AND user_id = ?",
		roomCode, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}
