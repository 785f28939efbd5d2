package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestFocus(t *testing.T) (*FocusService, *RoomService) {
	t.Helper()
	store := newTestStore(t)
	recorder := NewEventRecorder(store)
	return NewFocusService(store, recorder), NewRoomService(store, recorder)
}

func TestFocusSet(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("locks two or three distinct areas", func(t *testing.T) {
		focus, rooms := newTestFocus(t)
		mustJoin(t, rooms, "ROOMA", "Alice", "u1")

		got, err := focus.Set(ctx, "ROOMA", "u1", []string{" sleep ", "budget", "sleep"}, now)
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if len(got.Areas) != 2 || got.Areas[0] != "sleep" || got.Areas[1] != "budget" {
			t.Errorf("expected trimmed deduplicated areas, got %v", got.Areas)
		}
		if !got.Locked {
			t.Error("expected focus to be locked")
		}
	})

	t.Run("second set in the same week is rejected unchanged", func(t *testing.T) {
		focus, rooms := newTestFocus(t)
		mustJoin(t, rooms, "ROOMA", "Alice", "u1")

		if _, err := focus.Set(ctx, "ROOMA", "u1", []string{"sleep", "budget"}, now); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		_, err := focus.Set(ctx, "ROOMA", "u1", []string{"other", "areas"}, now)
		if !errors.Is(err, ErrFocusAlreadySet) {
			t.Fatalf("expected ErrFocusAlreadySet, got %v", err)
		}

		got, err := focus.Get(ctx, "ROOMA", "u1", now)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Areas[0] != "sleep" {
			t.Errorf("first focus was modified: %v", got.Areas)
		}
	})

	t.Run("area count is validated before any write", func(t *testing.T) {
		focus, rooms := newTestFocus(t)
		mustJoin(t, rooms, "ROOMA", "Alice", "u1")

		bad := [][]string{
			{},
			{"one"},
			{"a", "b", "c", "d"},
			{"dup", "DUP"},          // dedupes to one
			{"  ", "", "x"},         // empties collapse to one
		}
		for _, areas := range bad {
			if _, err := focus.Set(ctx, "ROOMA", "u1", areas, now); !errors.Is(err, ErrFocusAreasInvalid) {
				t.Errorf("Set(%v): expected ErrFocusAreasInvalid, got %v", areas, err)
			}
		}

		// Nothing was written: a valid set still succeeds.
		if _, err := focus.Set(ctx, "ROOMA", "u1", []string{"sleep", "budget", "mail"}, now); err != nil {
			t.Fatalf("valid Set after rejections failed: %v", err)
		}
	})

	t.Run("requires membership", func(t *testing.T) {
		focus, rooms := newTestFocus(t)
		mustJoin(t, rooms, "ROOMA", "Alice", "u1")

		if _, err := focus.Set(ctx, "ROOMA", "stranger", []string{"a", "b"}, now); !errors.Is(err, ErrJoinRequired) {
			t.Fatalf("expected ErrJoinRequired, got %v", err)
		}
		if _, err := focus.Get(ctx, "ROOMA", "stranger", now); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember, got %v", err)
		}
	})

	t.Run("unset focus reads as nil", func(t *testing.T) {
		focus, rooms := newTestFocus(t)
		mustJoin(t, rooms, "ROOMA", "Alice", "u1")

		got, err := focus.Get(ctx, "ROOMA", "u1", now)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil focus, got %+v", got)
		}
	})
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewSuggestService(store)
	rooms := NewRoomService(store, NewEventRecorder(store))

	t.Run("suggestions pass the admission rules", func(t *testing.T) {
		suggestions, err := svc.Suggest(ctx, 5)
		if err != nil {
			t.Fatalf("Suggest failed: %v", err)
		}
		if len(suggestions) == 0 {
			t.Fatal("expected at least one suggestion")
		}
		for _, code := range suggestions {
			if _, err := NormalizeRoomCode(code); err != nil {
				t.Errorf("suggestion %s fails admission rules: %v", code, err)
			}
		}
	})

	t.Run("validate flags reserved and taken codes", func(t *testing.T) {
		mustJoin(t, rooms, "TAKEN1", "Alice", "u1")

		v, err := svc.Validate(ctx, "TAKEN1")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if !v.Valid || v.Available {
			t.Errorf("expected valid but unavailable, got %+v", v)
		}

		v, err = svc.Validate(ctx, "admin")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if v.Valid || v.ErrorCode != "ROOM_CODE_RESERVED" {
			t.Errorf("expected ROOM_CODE_RESERVED, got %+v", v)
		}

		v, err = svc.Validate(ctx, "FREE42")
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if !v.Valid || !v.Available {
			t.Errorf("expected valid and available, got %+v", v)
		}
	})
}
