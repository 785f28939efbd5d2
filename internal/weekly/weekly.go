// Package weekly computes the derived weekly state of a room from its raw
// entry log: per-member balance, deposit rate and streaks, plus the sorted
// leaderboard and milestone classification. Everything here is pure and
// stateless; aggregates are recomputed fresh on every read, never cached.
package weekly

import (
	"sort"
	"time"
)

// Milestone thresholds on the weekly balance. Fixed constants, not
// configurable per room.
const (
	WinThreshold  = 20
	LossThreshold = -20
)

// referenceZone fixes the week boundary. All clients share one boundary
// regardless of where they poll from.
var referenceZone = mustLoadZone("America/New_York")

func mustLoadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("weekly: load reference zone: " + err.Error())
	}
	return loc
}

// Window is one aggregation week: Monday 00:01 in the reference zone through
// the following Monday 00:01, exclusive.
type Window struct {
	// Key is the Monday date (YYYY-MM-DD) identifying the window.
	Key   string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor returns the aggregation window covering now.
func WindowFor(now time.Time) Window {
	local := now.In(referenceZone)
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day()-daysSinceMonday, 0, 1, 0, 0, referenceZone)
	if local.Before(monday) {
		// Monday between midnight and 00:01 still belongs to the prior week.
		monday = monday.AddDate(0, 0, -7)
	}
	return Window{
		Key:   monday.Format("2006-01-02"),
		Start: monday,
		End:   monday.AddDate(0, 0, 7),
	}
}

// Entry is the minimal slice of a ledger entry the fold needs.
type Entry struct {
	UserID      string
	DisplayName string
	Delta       int
	CreatedAt   int64 // Unix milliseconds
}

// MemberStats is the derived weekly aggregate for one member.
type MemberStats struct {
	UserID        string
	DisplayName   string
	Balance       int
	Deposits      int
	Total         int
	Streak        int
	LongestStreak int
	DepositRate   float64
}

// Fold walks the week's entries in chronological order and accumulates
// per-member stats.
//
// Deltas other than +1/-1 count toward the total and reset the streak but
// leave balance and deposits untouched. Only the generic ledger endpoint can
// produce such entries; the behavior is preserved as-is pending product
// clarification.
func Fold(entries []Entry) map[string]*MemberStats {
	stats := make(map[string]*MemberStats)
	for _, e := range entries {
		m, ok := stats[e.UserID]
		if !ok {
			m = &MemberStats{UserID: e.UserID, DisplayName: e.DisplayName}
			stats[e.UserID] = m
		}
		// Prefer the freshest name snapshot.
		if e.DisplayName != "" {
			m.DisplayName = e.DisplayName
		}

		m.Total++
		switch e.Delta {
		case 1:
			m.Balance++
			m.Deposits++
			m.Streak++
			if m.Streak > m.LongestStreak {
				m.LongestStreak = m.Streak
			}
		case -1:
			m.Balance--
			m.Streak = 0
		default:
			m.Streak = 0
		}
	}

	for _, m := range stats {
		if m.Total > 0 {
			m.DepositRate = float64(m.Deposits) / float64(m.Total)
		}
	}
	return stats
}

// Leaderboard orders member stats by balance, then deposit rate, then longest
// streak, all descending. Members tied on all three keys come out in user-ID
// order so repeated reads are deterministic.
func Leaderboard(stats map[string]*MemberStats) []MemberStats {
	board := make([]MemberStats, 0, len(stats))
	for _, m := range stats {
		board = append(board, *m)
	}
	sort.Slice(board, func(i, j int) bool {
		a, b := board[i], board[j]
		if a.Balance != b.Balance {
			return a.Balance > b.Balance
		}
		if a.DepositRate != b.DepositRate {
			return a.DepositRate > b.DepositRate
		}
		if a.LongestStreak != b.LongestStreak {
			return a.LongestStreak > b.LongestStreak
		}
		return a.UserID < b.UserID
	})
	return board
}

// Milestone classifies a weekly balance: "win" at or above +20, "loss" at or
// below -20, otherwise "none".
func Milestone(balance int) string {
	switch {
	case balance >= WinThreshold:
		return "win"
	case balance <= LossThreshold:
		return "loss"
	default:
		return "none"
	}
}
