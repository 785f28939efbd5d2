package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

// AppendEvent persists an audit event. Generates an ID if not set. Callers in
// the service layer treat failures as best-effort; the store itself reports
// them normally.
func (s *SQLiteStore) AppendEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Payload == "" {
		event.Payload = "{}"
	}

	query := `
		INSERT INTO events (id, event_type, room_code, user_id, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Type,
		event.RoomCode,
		event.UserID,
		event.Payload,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// ListEvents returns audit events matching the filter, newest first. Optional
// predicates are assembled as a parameterized list, never by interpolating
// caller input into SQL.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter storage.EventFilter) ([]models.Event, error) {
	query := `
		SELECT id, event_type, room_code, user_id, payload, created_at
		FROM events
	`

	var conds []string
	var args []any
	if filter.RoomCode != "" {
		conds = append(conds, "room_code = ?")
		args = append(args, filter.RoomCode)
	}
	if filter.Type != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, filter.Type)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxEventLimit {
		limit = defaultEventLimit
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.RoomCode,
			&e.UserID,
			&e.Payload,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
