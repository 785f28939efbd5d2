package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/storage"
)

const (
	roomCodeMinLen = 3
	roomCodeMaxLen = 12

	defaultMaxMembers = 50
	minMaxMembers     = 1
	maxMaxMembers     = 200

	inviteCodeLen = 8
)

// reservedRoomCodes can never be claimed as rooms; they collide with paths,
// tooling, and strings that serializers love to produce by accident.
var reservedRoomCodes = map[string]struct{}{
	"ADMIN":     {},
	"API":       {},
	"TEST":      {},
	"DEBUG":     {},
	"NULL":      {},
	"UNDEFINED": {},
	"ERROR":     {},
}

// RoomService implements the admission gate and room/membership lifecycle.
type RoomService struct {
	store    storage.Store
	recorder *EventRecorder
}

// NewRoomService creates a RoomService over the given store.
func NewRoomService(store storage.Store, recorder *EventRecorder) *RoomService {
	return &RoomService{store: store, recorder: recorder}
}

// NormalizeRoomCode uppercases and validates a caller-supplied room code.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < roomCodeMinLen {
		return "", ErrRoomCodeTooShort
	}
	if len(code) > roomCodeMaxLen {
		return "", ErrRoomCodeTooLong
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrRoomCodeInvalid
		}
	}
	if _, reserved := reservedRoomCodes[code]; reserved {
		return "", ErrRoomCodeReserved
	}
	return code, nil
}

// NormalizeDisplayName trims, folds inner whitespace and lowercases a display
// name; the result is the unit of per-room name uniqueness.
func NormalizeDisplayName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// newInviteCode returns an 8-char uppercase alphanumeric capability token.
func newInviteCode() string {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	b := make([]byte, inviteCodeLen)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in much deeper trouble.
		panic(fmt.Sprintf("service: read random bytes: %v", err))
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}

// AdmitParams carries one admission request. DisplayName empty means peek or
// create-without-joining: the room is ensured to exist and returned, but no
// membership invariants apply.
type AdmitParams struct {
	RoomCode    string
	DisplayName string
	UserID      string
	InviteCode  string
}

// AdmitResult is the outcome of an admission request.
type AdmitResult struct {
	Room        *models.Room
	Member      *models.Member // nil for peek mode
	Created     bool           // true when this request created the room
	MemberCount int
}

// Admit validates the room code, creates the room on first sight, and, when a
// display name is supplied, enforces the join invariants (invite code,
// capacity, name uniqueness) and upserts the membership.
func (s *RoomService) Admit(ctx context.Context, p AdmitParams) (*AdmitResult, error) {
	code, err := NormalizeRoomCode(p.RoomCode)
	if err != nil {
		return nil, err
	}

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	created := false
	if room == nil {
		room = &models.Room{
			Code:       code,
			CreatorID:  p.UserID,
			InviteCode: newInviteCode(), // held in reserve until invite-only is toggled on
			MaxMembers: defaultMaxMembers,
			CreatedAt:  time.Now().Unix(),
		}
		err = s.store.CreateRoom(ctx, room)
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Lost a creation race; the other writer's room wins.
			room, err = s.store.GetRoom(ctx, code)
			if err == nil && room == nil {
				err = fmt.Errorf("room %s vanished after creation race", code)
			}
		} else if err == nil {
			created = true
			slog.Info("Room created", "room", code, "creator", p.UserID)
			s.recorder.Record(ctx, "room_created", code, p.UserID, nil)
		}
		if err != nil {
			return nil, err
		}
	}

	result := &AdmitResult{Room: room, Created: created}

	if p.DisplayName == "" {
		// Peek mode: no membership invariants apply.
		result.MemberCount, err = s.store.CountMembers(ctx, code)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	member, err := s.join(ctx, room, p)
	if err != nil {
		return nil, err
	}
	result.Member = member
	result.MemberCount, err = s.store.CountMembers(ctx, code)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// join enforces the membership invariants for an admission with a display name.
func (s *RoomService) join(ctx context.Context, room *models.Room, p AdmitParams) (*models.Member, error) {
	normalized := NormalizeDisplayName(p.DisplayName)
	if normalized == "" {
		return nil, ErrDisplayNameInvalid
	}

	existing, err := s.store.GetMember(ctx, room.Code, p.UserID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		// New membership: gate on lock, invite and capacity. Existing members
		// re-upserting (e.g. a rename) pass straight through.
		if room.Locked {
			return nil, ErrRoomLocked
		}
		if room.InviteOnly && p.UserID != room.CreatorID && p.InviteCode != room.InviteCode {
			return nil, ErrRoomInviteOnly
		}
		count, err := s.store.CountMembers(ctx, room.Code)
		if err != nil {
			return nil, err
		}
		if count >= room.MaxMembers {
			return nil, ErrRoomFull
		}
	}

	owner, err := s.store.GetMemberByName(ctx, room.Code, normalized)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.UserID != p.UserID {
		return nil, ErrDuplicateName
	}

	now := time.Now().Unix()
	member := &models.Member{
		RoomCode:       room.Code,
		UserID:         p.UserID,
		DisplayName:    strings.TrimSpace(p.DisplayName),
		NormalizedName: normalized,
		JoinedAt:       now,
		LastSeenAt:     now,
	}
	if existing != nil {
		member.JoinedAt = existing.JoinedAt
	}

	err = s.store.UpsertMember(ctx, member)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Lost a name race against a concurrent join.
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}

	if existing == nil {
		slog.Info("Member joined", "room", room.Code, "name", member.DisplayName)
		s.recorder.Record(ctx, "member_joined", room.Code, p.UserID, map[string]any{"name": member.DisplayName})
	} else if existing.DisplayName != member.DisplayName {
		s.recorder.Record(ctx, "member_renamed", room.Code, p.UserID, map[string]any{
			"from": existing.DisplayName,
			"to":   member.DisplayName,
		})
	}
	return member, nil
}

// Peek returns the room's public fields and member count without creating or
// joining anything. Absent rooms are ROOM_NOT_FOUND.
func (s *RoomService) Peek(ctx context.Context, roomCode string) (*models.Room, int, error) {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, 0, err
	}
	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	if room == nil {
		return nil, 0, ErrRoomNotFound
	}
	count, err := s.store.CountMembers(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	return room, count, nil
}

// NameAvailable reports whether a display name is free in the room for the
// given user (their own current name counts as available).
func (s *RoomService) NameAvailable(ctx context.Context, roomCode, displayName, userID string) (bool, error) {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return false, err
	}
	normalized := NormalizeDisplayName(displayName)
	if normalized == "" {
		return false, nil
	}
	owner, err := s.store.GetMemberByName(ctx, code, normalized)
	if err != nil {
		return false, err
	}
	return owner == nil || owner.UserID == userID, nil
}

// ManageParams carries a creator-only settings update. Nil fields are left
// unchanged.
type ManageParams struct {
	RoomCode   string
	UserID     string
	Locked     *bool
	InviteOnly *bool
	MaxMembers *int
}

// Manage applies a settings update. Only the room creator may call it. The
// invite code persists across invite-only toggles and is never regenerated.
func (s *RoomService) Manage(ctx context.Context, p ManageParams) (*models.Room, error) {
	room, err := s.requireCreator(ctx, p.RoomCode, p.UserID)
	if err != nil {
		return nil, err
	}

	if p.Locked != nil {
		room.Locked = *p.Locked
	}
	if p.InviteOnly != nil {
		room.InviteOnly = *p.InviteOnly
	}
	if p.MaxMembers != nil {
		limit := *p.MaxMembers
		if limit < minMaxMembers {
			limit = minMaxMembers
		}
		if limit > maxMaxMembers {
			limit = maxMaxMembers
		}
		room.MaxMembers = limit
	}

	if err := s.store.UpdateRoomSettings(ctx, room); err != nil {
		return nil, err
	}

	slog.Info("Room settings updated", "room", room.Code,
		"locked", room.Locked, "invite_only", room.InviteOnly, "max_members", room.MaxMembers)
	s.recorder.Record(ctx, "room_settings_changed", room.Code, p.UserID, map[string]any{
		"locked":      room.Locked,
		"invite_only": room.InviteOnly,
		"max_members": room.MaxMembers,
	})
	return room, nil
}

// Roster returns the room settings plus the full member list; creator-only.
func (s *RoomService) Roster(ctx context.Context, roomCode, userID string) (*models.Room, []models.Member, error) {
	room, err := s.requireCreator(ctx, roomCode, userID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.store.ListMembers(ctx, room.Code)
	if err != nil {
		return nil, nil, err
	}
	return room, members, nil
}

func (s *RoomService) requireCreator(ctx context.Context, roomCode, userID string) (*models.Room, error) {
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
	if room.CreatorID != userID {
		return nil, ErrNotCreator
	}
	return room, nil
}

// LeavePreview describes what a confirmed leave will remove, so clients can
// render the confirmation prompt.
type LeavePreview struct {
	DisplayName string
	JoinedAt    int64
	EntryCount  int
}

// PreviewLeave returns the leave preview for a member.
func (s *RoomService) PreviewLeave(ctx context.Context, roomCode, userID string) (*LeavePreview, error) {
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
	count, err := s.store.CountMemberEntries(ctx, code, userID)
	if err != nil {
		return nil, err
	}
	return &LeavePreview{
		DisplayName: member.DisplayName,
		JoinedAt:    member.JoinedAt,
		EntryCount:  count,
	}, nil
}

// Leave removes the membership. confirm must be true; the caller owns the
// confirmation UI, this service owns the gate. Ledger entries are retained.
func (s *RoomService) Leave(ctx context.Context, roomCode, userID string, confirm bool) error {
	code, err := NormalizeRoomCode(roomCode)
	if err != nil {
		return err
	}
	member, err := s.store.GetMember(ctx, code, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotAMember
	}
	if !confirm {
		return ErrConfirmationRequired
	}

	if err := s.store.DeleteMember(ctx, code, userID); err != nil {
		return err
	}

	slog.Info("Member left", "room", code, "name", member.DisplayName)
	s.recorder.Record(ctx, "member_left", code, userID, map[string]any{"name": member.DisplayName})
	return nil
}
