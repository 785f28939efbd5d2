package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rferrer/steady/internal/metrics"
	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
	"github.com/rferrer/steady/internal/weekly"
)

const (
	// UndoWindow is how long after creation a member may retract their most
	// recent entry. A business rule, not a scheduling primitive.
	UndoWindow = 15 * time.Minute

	historyMinMonths = 1
	historyMaxMonths = 24
)

// LedgerService implements the append-only entry ledger and its derived
// weekly state.
type LedgerService struct {
	store    storage.Store
	recorder *EventRecorder
}

// NewLedgerService creates a LedgerService over the given store.
func NewLedgerService(store storage.Store, recorder *EventRecorder) *LedgerService {
	return &LedgerService{store: store, recorder: recorder}
}

// Append records one signed entry for an existing member and touches their
// last-seen timestamp. Requires membership: absent members get JOIN_REQUIRED
// so clients can distinguish "join first" from "room missing".
func (s *LedgerService) Append(ctx context.Context, roomCode, userID string, delta int, label string) (*models.Entry, error) {
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

	now := time.Now()
	entry := &models.Entry{
		ID:          uuid.New().String(),
		RoomCode:    code,
		UserID:      userID,
		DisplayName: member.DisplayName, // name snapshot, survives renames
		Delta:       delta,
		Label:       label,
		CreatedAt:   now.UnixMilli(),
	}
	if err := s.store.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}

	// Advisory only; a failure here must not fail the append.
	if err := s.store.TouchMember(ctx, code, userID, now.Unix()); err != nil {
		slog.Warn("Last-seen update failed", "room", code, "error", err)
	}

	metrics.EntriesTotal.WithLabelValues(metrics.EntryKind(delta)).Inc()
	s.recorder.Record(ctx, "entry_added", code, userID, map[string]any{"delta": delta})
	return entry, nil
}

// Undo retracts the member's most recent entry in the room, provided one
// exists and its creation is within the undo window. It can never remove
// another member's entry or an older entry while a newer one exists.
func (s *LedgerService) Undo(ctx context.Context, roomCode, userID string) error {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return err
	}
	member, err := s.store.GetMember(ctx, code, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrJoinRequired
	}

	latest, err := s.store.LatestEntry(ctx, code, userID)
	if err != nil {
		return err
	}
	if latest == nil {
		return ErrNothingToUndo
	}

	elapsed := time.Since(time.UnixMilli(latest.CreatedAt))
	if elapsed > UndoWindow {
		return ErrUndoWindowElapsed
	}

	if err := s.store.DeleteEntry(ctx, latest.ID); err != nil {
		return err
	}

	metrics.UndosTotal.Inc()
	slog.Info("Entry undone", "room", code, "entry_id", latest.ID, "delta", latest.Delta)
	s.recorder.Record(ctx, "entry_undone", code, userID, map[string]any{"entry_id": latest.ID, "delta": latest.Delta})
	return nil
}

// History returns the member's own entries over the lookback, chronological.
// sinceMonths is clamped to [1, 24]. Members cannot read each other's raw
// entries.
func (s *LedgerService) History(ctx context.Context, roomCode, userID string, sinceMonths int) ([]models.Entry, error) {
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

	if sinceMonths < historyMinMonths {
		sinceMonths = historyMinMonths
	}
	if sinceMonths > historyMaxMonths {
		sinceMonths = historyMaxMonths
	}
	since := time.Now().AddDate(0, -sinceMonths, 0).UnixMilli()

	return s.store.ListMemberEntries(ctx, code, userID, since)
}

// RoomState is the derived weekly state of a room.
type RoomState struct {
	WeekKey     string
	WindowStart time.Time
	WindowEnd   time.Time
	Leaderboard []weekly.MemberStats

	// You and Milestone describe the requesting member; You is nil when the
	// caller supplied no user ID or has no entries this week.
	You       *weekly.MemberStats
	Milestone string
}

// State recomputes the weekly aggregate and leaderboard from the raw entry
// log. Stateless and idempotent: two calls with no intervening writes yield
// identical output.
func (s *LedgerService) State(ctx context.Context, roomCode, userID string, now time.Time) (*RoomState, error) {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	window := weekly.WindowFor(now)
	entries, err := s.store.ListEntries(ctx, code, window.Start.UnixMilli(), window.End.UnixMilli())
	if err != nil {
		return nil, err
	}

	folded := make([]weekly.Entry, len(entries))
	for i, e := range entries {
		folded[i] = weekly.Entry{
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Delta:       e.Delta,
			CreatedAt:   e.CreatedAt,
		}
	}
	stats := weekly.Fold(folded)

	state := &RoomState{
		WeekKey:     window.Key,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Leaderboard: weekly.Leaderboard(stats),
		Milestone:   "none",
	}
	if userID != "" {
		if mine, ok := stats[userID]; ok {
			you := *mine
			state.You = &you
			state.Milestone = weekly.Milestone(mine.Balance)
		}
	}
	return state, nil
}
