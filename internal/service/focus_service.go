package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
	"github.com/rferrer/steady/internal/weekly"
)

const (
	focusMinAreas = 2
	focusMaxAreas = 3
)

// FocusService implements the one-time weekly focus lock.
type FocusService struct {
	store    storage.Store
	recorder *EventRecorder
}

// NewFocusService creates a FocusService over the given store.
func NewFocusService(store storage.Store, recorder *EventRecorder) *FocusService {
	return &FocusService{store: store, recorder: recorder}
}

// normalizeAreas trims, drops empties and dedupes case-insensitively while
// preserving order.
func normalizeAreas(areas []string) []string {
	seen := make(map[string]struct{}, len(areas))
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Set records the member's focus areas for the current week and locks them.
// Validation happens before any write; a second set for the same week key is
// rejected, never merged.
func (s *FocusService) Set(ctx context.Context, roomCode, userID string, areas []string, now time.Time) (*models.WeeklyFocus, error) {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, err
	}
	member, err := s.store.GetMember(ctx, code, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrJoinRequired
	}

	normalized := normalizeAreas(areas)
	if len(normalized) < focusMinAreas || len(normalized) > focusMaxAreas {
		return nil, ErrFocusAreasInvalid
	}

	weekKey := weekly.WindowFor(now).Key
	existing, err := s.store.GetFocus(ctx, code, userID, weekKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFocusAlreadySet
	}

	focus := &models.WeeklyFocus{
		RoomCode:  code,
		UserID:    userID,
		WeekKey:   weekKey,
		Areas:     normalized,
		Locked:    true,
		CreatedAt: now.Unix(),
	}
	err = s.store.CreateFocus(ctx, focus)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Lost a race against a concurrent set for the same week.
		return nil, ErrFocusAlreadySet
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Weekly focus locked", "room", code, "week", weekKey, "areas", len(normalized))
	s.recorder.Record(ctx, "focus_set", code, userID, map[string]any{"week": weekKey, "areas": normalized})
	return focus, nil
}

// Get returns the member's focus for the current week, or (nil, nil) when
// none was set.
func (s *FocusService) Get(ctx context.Context, roomCode, userID string, now time.Time) (*models.WeeklyFocus, error) {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, err
	}
	member, err := s.store.GetMember(ctx, code, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	return s.store.GetFocus(ctx, code, userID, weekly.WindowFor(now).Key)
}
