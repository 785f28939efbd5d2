package server

import (
	"time"

	"github.com/rferrer/steady/internal/models"
	"github.com/rferrer/steady/internal/weekly"
)

// Request bodies. Validator tags cover shape only; domain rules (room code
// bounds, reserved words, area counts) live in the service layer so their
// specific error codes survive.

type admitRequest struct {
	RoomCode    string `json:"roomCode" validate:"required"`
	DisplayName string `json:"displayName" validate:"omitempty,max=64"`
	UserID      string `json:"userId" validate:"required_with=DisplayName,max=128"`
	InviteCode  string `json:"inviteCode" validate:"omitempty,max=16"`
}

type manageRequest struct {
	RoomCode   string `json:"roomCode" validate:"required"`
	UserID     string `json:"userId" validate:"required,max=128"`
	Locked     *bool  `json:"locked"`
	InviteOnly *bool  `json:"inviteOnly"`
	MaxMembers *int   `json:"maxMembers" validate:"omitempty,min=0,max=10000"`
}

type leaveRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
	UserID   string `json:"userId" validate:"required,max=128"`
	Confirm  bool   `json:"confirm"`
}

type entryRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
	UserID   string `json:"userId" validate:"required,max=128"`
	Delta    int    `json:"delta"`
	Label    string `json:"label" validate:"omitempty,max=280"`
}

type focusRequest struct {
	RoomCode string   `json:"roomCode" validate:"required"`
	UserID   string   `json:"userId" validate:"required,max=128"`
	Areas    []string `json:"areas" validate:"required"`
}

type suggestValidateRequest struct {
	RoomCode string `json:"roomCode" validate:"required"`
}

// Response views.

type roomView struct {
	Code        string `json:"code"`
	Locked      bool   `json:"locked"`
	InviteOnly  bool   `json:"inviteOnly"`
	MaxMembers  int    `json:"maxMembers"`
	MemberCount int    `json:"memberCount"`
	CreatedAt   int64  `json:"createdAt"`

	// InviteCode is only populated for the room creator.
	InviteCode string `json:"inviteCode,omitempty"`
}

func newRoomView(room *models.Room, memberCount int, viewerID string) roomView {
	v := roomView{
		Code:        room.Code,
		Locked:      room.Locked,
		InviteOnly:  room.InviteOnly,
		MaxMembers:  room.MaxMembers,
		MemberCount: memberCount,
		CreatedAt:   room.CreatedAt,
	}
	if viewerID != "" && viewerID == room.CreatorID {
		v.InviteCode = room.InviteCode
	}
	return v
}

type memberView struct {
	DisplayName string `json:"displayName"`
	JoinedAt    int64  `json:"joinedAt"`
	LastSeenAt  int64  `json:"lastSeenAt"`
}

func newMemberView(m *models.Member) memberView {
	return memberView{
		DisplayName: m.DisplayName,
		JoinedAt:    m.JoinedAt,
		LastSeenAt:  m.LastSeenAt,
	}
}

type entryView struct {
	ID        string `json:"id"`
	Delta     int    `json:"delta"`
	Label     string `json:"label,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func newEntryView(e *models.Entry) entryView {
	return entryView{
		ID:        e.ID,
		Delta:     e.Delta,
		Label:     e.Label,
		CreatedAt: e.CreatedAt,
	}
}

type statsView struct {
	DisplayName   string  `json:"displayName"`
	Balance       int     `json:"balance"`
	Deposits      int     `json:"deposits"`
	Total         int     `json:"total"`
	DepositRate   float64 `json:"depositRate"`
	Streak        int     `json:"streak"`
	LongestStreak int     `json:"longestStreak"`
}

func newStatsView(m weekly.MemberStats) statsView {
	return statsView{
		DisplayName:   m.DisplayName,
		Balance:       m.Balance,
		Deposits:      m.Deposits,
		Total:         m.Total,
		DepositRate:   m.DepositRate,
		Streak:        m.Streak,
		LongestStreak: m.LongestStreak,
	}
}

type stateView struct {
	WeekKey     string      `json:"weekKey"`
	WindowStart time.Time   `json:"windowStart"`
	WindowEnd   time.Time   `json:"windowEnd"`
	Leaderboard []statsView `json:"leaderboard"`
	You         *statsView  `json:"you,omitempty"`
	Milestone   string      `json:"milestone"`
	History     []entryView `json:"history,omitempty"`
}

type focusView struct {
	WeekKey   string   `json:"weekKey"`
	Set       bool     `json:"set"`
	Areas     []string `json:"areas,omitempty"`
	Locked    bool     `json:"locked"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}
