package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rferrer/steady/internal/storage"
	"github.com/rferrer/steady/internal/storage/sqlite"
)

// newTestStore creates a throwaway SQLite store for service tests.
func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "steady-service-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestRoomService(t *testing.T) (*RoomService, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewRoomService(store, NewEventRecorder(store)), store
}

func mustJoin(t *testing.T, svc *RoomService, room, name, userID string) *AdmitResult {
	t.Helper()
	result, err := svc.Admit(context.Background(), AdmitParams{
		RoomCode:    room,
		DisplayName: name,
		UserID:      userID,
	})
	if err != nil {
		t.Fatalf("Admit(%s, %s) failed: %v", room, name, err)
	}
	return result
}

func TestNormalizeRoomCode(t *testing.T) {
	t.Run("uppercases and trims", func(t *testing.T) {
		code, err := NormalizeRoomCode("  testa ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != "TESTA" {
			t.Errorf("expected TESTA, got %s", code)
		}
	})

	cases := []struct {
		in   string
		want *Error
	}{
		{"ab", ErrRoomCodeTooShort},
		{"ABCDEFGHIJKLM", ErrRoomCodeTooLong},
		{"AB-CD", ErrRoomCodeInvalid},
		{"admin", ErrRoomCodeReserved},
		{"null", ErrRoomCodeReserved},
		{"undefined", ErrRoomCodeReserved},
	}
	for _, tc := range cases {
		if _, err := NormalizeRoomCode(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("NormalizeRoomCode(%q) = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestAdmit(t *testing.T) {
	ctx := context.Background()

	t.Run("first admission creates the room", func(t *testing.T) {
		svc, _ := newTestRoomService(t)
		result, err := svc.Admit(ctx, AdmitParams{RoomCode: "newroom", UserID: "u1"})
		if err != nil {
			t.Fatalf("Admit failed: %v", err)
		}
		if !result.Created {
			t.Error("expected room to be created")
		}
		if result.Room.Code != "NEWROOM" {
			t.Errorf("expected normalized code NEWROOM, got %s", result.Room.Code)
		}
		if result.Room.InviteCode == "" {
			t.Error("expected an invite code held in reserve")
		}
		if result.Room.MaxMembers != 50 {
			t.Errorf("expected default max members 50, got %d", result.Room.MaxMembers)
		}
		if result.Member != nil {
			t.Error("peek admission must not create a membership")
		}
	})

	t.Run("join creates a membership", func(t *testing.T) {
		svc, _ := newTestRoomService(t)
		result := mustJoin(t, svc, "ROOMA", "Alice", "u1")
		if result.Member == nil {
			t.Fatal("expected a member")
		}
		if result.Member.NormalizedName != "alice" {
			t.Errorf("expected normalized name alice, got %s", result.Member.NormalizedName)
		}
		if result.MemberCount != 1 {
			t.Errorf("expected member count 1, got %d", result.MemberCount)
		}
	})

	t.Run("duplicate name by another user is rejected", func(t *testing.T) {
		svc, _ := newTestRoomService(t)
		mustJoin(t, svc, "ROOMA", "Alice", "u1")

		_, err := svc.Admit(ctx, AdmitParams{RoomCode: "ROOMA", DisplayName: "  ALICE ", UserID: "u2"})
		if !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("same user renames freely", func(t *testing.T) {
		svc, _ := newTestRoomService(t)
		mustJoin(t, svc, "ROOMA", "Alice", "u1")

		result := mustJoin(t, svc, "ROOMA", "Alice Cooper", "u1")
		if result.Member.DisplayName != "Alice Cooper" {
			t.Errorf("expected rename, got %s", result.Member.DisplayName)
		}
		if result.MemberCount != 1 {
			t.Errorf("rename must not add members, count %d", result.MemberCount)
		}
	})

	t.Run("capacity limit blocks new joins", func(t *testing.T) {
		svc, _ := newTestRoomService(t)
		mustJoin(t, svc, "ROOMA", "Alice", "u1")
		limit := 1
		if _, err := svc.Manage(ctx, ManageParams{RoomCode: "ROOMA", UserID: "u1", MaxMembers: &limit}); err != nil {
			t.Fatalf("Manage failed: %v", err)
		}

		_, err := svc.Admit(ctx, AdmitParams{RoomCode: "ROOMA", DisplayName: "Bob", UserID: "u2"})
		if !errors.Is(err, ErrRoomFull) {
			t.Fatalf("expected ErrRoomFull, got %v", err)
		}

		// A full room still accepts a rename from an existing member.
		if _, err := svc.Admit(ctx, AdmitParams{RoomCode: "ROOMA", DisplayName: "Alicia", UserID: "u1"}); err != nil {
			t.Fatalf("rename in full room failed: %v", err)
		}
	})

	t.Run("locked room blocks new joins", func(t *testing.T) {
		svc, _ := newTestRoomService(t)
		mustJoin(t, svc, "ROOMA", "Alice", "u1")
		locked := true
		if _, err := svc.Manage(ctx, ManageParams{RoomCode: "ROOMA", UserID: "u1", Locked: &locked}); err != nil {
			t.Fatalf("Manage failed: %v", err)
		}

		_, err := svc.Admit(ctx, AdmitParams{RoomCode: "ROOMA", DisplayName: "Bob", UserID: "u2"})
		if !errors.Is(err, ErrRoomLocked) {
			t.Fatalf("expected ErrRoomLocked, got %v", err)
		}
	})
}

func TestInviteOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestRoomService(t)

	creator := mustJoin(t, svc, "CLUB1", "Alice", "u1")
	inviteCode := creator.Room.InviteCode

	on := true
	if _, err := svc.Manage(ctx, ManageParams{RoomCode: "CLUB1", UserID: "u1", InviteOnly: &on}); err != nil {
		t.Fatalf("Manage failed: %v", err)
	}

	t.Run("missing invite code is rejected", func(t *testing.T) {
		_, err := svc.Admit(ctx, AdmitParams{RoomCode: "CLUB1", DisplayName: "Bob", UserID: "u2"})
		if !errors.Is(err, ErrRoomInviteOnly) {
			t.Fatalf("expected ErrRoomInviteOnly, got %v", err)
		}
	})

	t.Run("wrong invite code is rejected", func(t *testing.T) {
		_, err := svc.Admit(ctx, AdmitParams{RoomCode: "CLUB1", DisplayName: "Bob", UserID: "u2", InviteCode: "WRONG123"})
		if !errors.Is(err, ErrRoomInviteOnly) {
			t.Fatalf("expected ErrRoomInviteOnly, got %v", err)
		}
	})

	t.Run("exact invite code is accepted", func(t *testing.T) {
		_, err := svc.Admit(ctx, AdmitParams{RoomCode: "CLUB1", DisplayName: "Bob", UserID: "u2", InviteCode: inviteCode})
		if err != nil {
			t.Fatalf("expected join to succeed, got %v", err)
		}
	})

	t.Run("toggling off and on reuses the invite code", func(t *testing.T) {
		off := false
		if _, err := svc.Manage(ctx, ManageParams{RoomCode: "CLUB1", UserID: "u1", InviteOnly: &off}); err != nil {
			t.Fatalf("Manage failed: %v", err)
		}
		on := true
		room, err := svc.Manage(ctx, ManageParams{RoomCode: "CLUB1", UserID: "u1", InviteOnly: &on})
		if err != nil {
			t.Fatalf("Manage failed: %v", err)
		}
		if room.InviteCode != inviteCode {
			t.Errorf("invite code regenerated: %s != %s", room.InviteCode, inviteCode)
		}
	})

	t.Run("creator bypasses the invite check", func(t *testing.T) {
		if _, err := svc.Admit(ctx, AdmitParams{RoomCode: "CLUB1", DisplayName: "Alice Prime", UserID: "u1"}); err != nil {
			t.Fatalf("creator join failed: %v", err)
		}
	})
}

func TestManage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestRoomService(t)
	mustJoin(t, svc, "ROOMA", "Alice", "u1")

	t.Run("only the creator may manage", func(t *testing.T) {
		on := true
		_, err := svc.Manage(ctx, ManageParams{RoomCode: "ROOMA", UserID: "u2", InviteOnly: &on})
		if !errors.Is(err, ErrNotCreator) {
			t.Fatalf("expected ErrNotCreator, got %v", err)
		}
	})

	t.Run("max members is clamped", func(t *testing.T) {
		tooMany := 9000
		room, err := svc.Manage(ctx, ManageParams{RoomCode: "ROOMA", UserID: "u1", MaxMembers: &tooMany})
		if err != nil {
			t.Fatalf("Manage failed: %v", err)
		}
		if room.MaxMembers != 200 {
			t.Errorf("expected clamp to 200, got %d", room.MaxMembers)
		}

		zero := 0
		room, err = svc.Manage(ctx, ManageParams{RoomCode: "ROOMA", UserID: "u1", MaxMembers: &zero})
		if err != nil {
			t.Fatalf("Manage failed: %v", err)
		}
		if room.MaxMembers != 1 {
			t.Errorf("expected clamp to 1, got %d", room.MaxMembers)
		}
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		_, err := svc.Manage(ctx, ManageParams{RoomCode: "GHOST", UserID: "u1"})
		if !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("expected ErrRoomNotFound, got %v", err)
		}
	})

	t.Run("roster is creator-only", func(t *testing.T) {
		if _, _, err := svc.Roster(ctx, "ROOMA", "u2"); !errors.Is(err, ErrNotCreator) {
			t.Fatalf("expected ErrNotCreator, got %v", err)
		}
		_, members, err := svc.Roster(ctx, "ROOMA", "u1")
		if err != nil {
			t.Fatalf("Roster failed: %v", err)
		}
		if len(members) != 1 {
			t.Errorf("expected 1 member, got %d", len(members))
		}
	})
}

func TestLeave(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestRoomService(t)
	ledger := NewLedgerService(store, NewEventRecorder(store))

	mustJoin(t, svc, "ROOMA", "Alice", "u1")
	if _, err := ledger.Append(ctx, "ROOMA", "u1", 1, ""); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	t.Run("preview reports what will be removed", func(t *testing.T) {
		preview, err := svc.PreviewLeave(ctx, "ROOMA", "u1")
		if err != nil {
			t.Fatalf("PreviewLeave failed: %v", err)
		}
		if preview.DisplayName != "Alice" || preview.EntryCount != 1 {
			t.Errorf("unexpected preview: %+v", preview)
		}
	})

	t.Run("leave without confirmation is rejected", func(t *testing.T) {
		err := svc.Leave(ctx, "ROOMA", "u1", false)
		if !errors.Is(err, ErrConfirmationRequired) {
			t.Fatalf("expected ErrConfirmationRequired, got %v", err)
		}
	})

	t.Run("confirmed leave removes the membership", func(t *testing.T) {
		if err := svc.Leave(ctx, "ROOMA", "u1", true); err != nil {
			t.Fatalf("Leave failed: %v", err)
		}
		if err := svc.Leave(ctx, "ROOMA", "u1", true); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember after leaving, got %v", err)
		}
	})

	t.Run("non-member cannot preview", func(t *testing.T) {
		if _, err := svc.PreviewLeave(ctx, "ROOMA", "u9"); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember, got %v", err)
		}
	})
}

func TestNameAvailable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestRoomService(t)
	mustJoin(t, svc, "ROOMA", "Alice", "u1")

	cases := []struct {
		name   string
		userID string
		want   bool
	}{
		{"alice", "u2", false},
		{"ALICE", "u2", false},
		{"alice", "u1", true}, // own name stays available to its owner
		{"bob", "u2", true},
	}
	for _, tc := range cases {
		got, err := svc.NameAvailable(ctx, "ROOMA", tc.name, tc.userID)
		if err != nil {
			t.Fatalf("NameAvailable(%s) failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("NameAvailable(%s, %s) = %v, want %v", tc.name, tc.userID, got, tc.want)
		}
	}
}
