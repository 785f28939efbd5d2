package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
)

// CreateFocus inserts a weekly focus record. A second write for the same
// (room, user, week key) returns storage.ErrAlreadyExists: focus records are
// immutable once created, never merged.
func (s *SQLiteStore) CreateFocus(ctx context.Context, focus *models.WeeklyFocus) error {
	areas, err := json.Marshal(focus.Areas)
	if err != nil {
		return fmt.Errorf("failed to encode focus areas: %w", err)
	}

	query := `
		INSERT INTO weekly_focus (room_code, user_id, week_key, areas, locked, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err = execRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			focus.RoomCode,
			focus.UserID,
			focus.WeekKey,
			string(areas),
			boolToInt(focus.Locked),
			focus.CreatedAt,
		)
		return err
	})

	if isUniqueViolation(err, "weekly_focus") {
		return storage.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create focus: %w", err)
	}

	return nil
}

// GetFocus retrieves the focus record for (room, user, week key).
// Returns (nil, nil) when none was set.
func (s *SQLiteStore) GetFocus(ctx context.Context, roomCode, userID, weekKey string) (*models.WeeklyFocus, error) {
	query := `
		SELECT room_code, user_id, week_key, areas, locked, created_at
		FROM weekly_focus
		WHERE room_code = ? AND user_id = ? AND week_key = ?
	`

	focus := &models.WeeklyFocus{}
	var areas string
	var locked int
	err := s.db.QueryRowContext(ctx, query, roomCode, userID, weekKey).Scan(
		&focus.RoomCode,
		&focus.UserID,
		&focus.WeekKey,
		&areas,
		&locked,
		&focus.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // No focus set for this week
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get focus: %w", err)
	}

	if err := json.Unmarshal([]byte(areas), &focus.Areas); err != nil {
		return nil, fmt.Errorf("failed to decode focus areas: %w", err)
	}
	focus.Locked = locked != 0
	return focus, nil
}
