package weekly

import (
	"testing"
	"time"
)

func TestWindowFor(t *testing.T) {
	t.Run("midweek maps to current Monday", func(t *testing.T) {
		// Wednesday afternoon in the reference zone.
		now := time.Date(2026, 1, 7, 15, 0, 0, 0, referenceZone)
		w := WindowFor(now)

		if w.Key != "2026-01-05" {
			t.Errorf("expected week key 2026-01-05, got %s", w.Key)
		}
		if !w.Contains(now) {
			t.Error("expected window to contain now")
		}
		if got := w.End.Sub(w.Start); got != 7*24*time.Hour {
			t.Errorf("expected a 7-day window, got %v", got)
		}
	})

	t.Run("Monday before 00:01 belongs to the prior week", func(t *testing.T) {
		now := time.Date(2026, 1, 5, 0, 0, 30, 0, referenceZone)
		w := WindowFor(now)

		if w.Key != "2025-12-29" {
			t.Errorf("expected week key 2025-12-29, got %s", w.Key)
		}
	})

	t.Run("Monday at 00:01 starts the new week", func(t *testing.T) {
		now := time.Date(2026, 1, 5, 0, 1, 0, 0, referenceZone)
		w := WindowFor(now)

		if w.Key != "2026-01-05" {
			t.Errorf("expected week key 2026-01-05, got %s", w.Key)
		}
		if !w.Start.Equal(now) {
			t.Errorf("expected window to start at %v, got %v", now, w.Start)
		}
	})

	t.Run("Sunday night still belongs to the running week", func(t *testing.T) {
		now := time.Date(2026, 1, 11, 23, 59, 0, 0, referenceZone)
		w := WindowFor(now)

		if w.Key != "2026-01-05" {
			t.Errorf("expected week key 2026-01-05, got %s", w.Key)
		}
	})

	t.Run("other zones resolve to the same boundary", func(t *testing.T) {
		utc := time.Date(2026, 1, 7, 20, 0, 0, 0, time.UTC)
		if got, want := WindowFor(utc).Key, WindowFor(utc.In(referenceZone)).Key; got != want {
			t.Errorf("expected identical keys, got %s vs %s", got, want)
		}
	})
}

func TestFold(t *testing.T) {
	at := func(i int) int64 { return int64(1000 + i) }

	t.Run("deposits and withdrawals", func(t *testing.T) {
		// Three deposits then one withdrawal.
		entries := []Entry{
			{UserID: "u1", DisplayName: "alice", Delta: 1, CreatedAt: at(0)},
			{UserID: "u1", DisplayName: "alice", Delta: 1, CreatedAt: at(1)},
			{UserID: "u1", DisplayName: "alice", Delta: 1, CreatedAt: at(2)},
			{UserID: "u1", DisplayName: "alice", Delta: -1, CreatedAt: at(3)},
		}

		stats := Fold(entries)
		m := stats["u1"]
		if m == nil {
			t.Fatal("expected stats for u1")
		}
		if m.Balance != 2 {
			t.Errorf("expected balance 2, got %d", m.Balance)
		}
		if m.Deposits != 3 {
			t.Errorf("expected 3 deposits, got %d", m.Deposits)
		}
		if m.Total != 4 {
			t.Errorf("expected total 4, got %d", m.Total)
		}
		if m.DepositRate != 0.75 {
			t.Errorf("expected deposit rate 0.75, got %f", m.DepositRate)
		}
		if m.LongestStreak != 3 {
			t.Errorf("expected longest streak 3, got %d", m.LongestStreak)
		}
		if m.Streak != 0 {
			t.Errorf("expected current streak 0 after withdrawal, got %d", m.Streak)
		}
	})

	t.Run("balance is the sum of deltas", func(t *testing.T) {
		deltas := []int{1, -1, 1, 1, -1, 1, 1, 1, -1}
		var entries []Entry
		sum := 0
		for i, d := range deltas {
			entries = append(entries, Entry{UserID: "u1", Delta: d, CreatedAt: at(i)})
			sum += d
		}

		m := Fold(entries)["u1"]
		if m.Balance != sum {
			t.Errorf("expected balance %d, got %d", sum, m.Balance)
		}
		if m.Total != len(deltas) {
			t.Errorf("expected total %d, got %d", len(deltas), m.Total)
		}
	})

	t.Run("non-unit delta counts toward total only", func(t *testing.T) {
		entries := []Entry{
			{UserID: "u1", Delta: 1, CreatedAt: at(0)},
			{UserID: "u1", Delta: 1, CreatedAt: at(1)},
			{UserID: "u1", Delta: 5, CreatedAt: at(2)},
			{UserID: "u1", Delta: 1, CreatedAt: at(3)},
		}

		m := Fold(entries)["u1"]
		if m.Balance != 3 {
			t.Errorf("expected balance 3 (non-unit delta ignored), got %d", m.Balance)
		}
		if m.Deposits != 3 {
			t.Errorf("expected 3 deposits, got %d", m.Deposits)
		}
		if m.Total != 4 {
			t.Errorf("expected total 4, got %d", m.Total)
		}
		if m.LongestStreak != 2 {
			t.Errorf("expected longest streak 2 (reset by non-unit delta), got %d", m.LongestStreak)
		}
		if m.Streak != 1 {
			t.Errorf("expected current streak 1, got %d", m.Streak)
		}
	})

	t.Run("members fold independently", func(t *testing.T) {
		entries := []Entry{
			{UserID: "u1", Delta: 1, CreatedAt: at(0)},
			{UserID: "u2", Delta: -1, CreatedAt: at(1)},
			{UserID: "u1", Delta: 1, CreatedAt: at(2)},
		}

		stats := Fold(entries)
		if stats["u1"].Balance != 2 || stats["u2"].Balance != -1 {
			t.Errorf("expected balances 2/-1, got %d/%d", stats["u1"].Balance, stats["u2"].Balance)
		}
	})

	t.Run("empty log yields no stats and no division by zero", func(t *testing.T) {
		if got := len(Fold(nil)); got != 0 {
			t.Errorf("expected empty stats, got %d members", got)
		}
	})
}

func TestLeaderboard(t *testing.T) {
	t.Run("deposit rate breaks balance ties", func(t *testing.T) {
		stats := map[string]*MemberStats{
			"a": {UserID: "a", DisplayName: "low-rate", Balance: 3, DepositRate: 0.5},
			"b": {UserID: "b", DisplayName: "high-rate", Balance: 3, DepositRate: 0.8},
			"c": {UserID: "c", DisplayName: "perfect", Balance: 1, DepositRate: 1.0},
		}

		board := Leaderboard(stats)
		if len(board) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(board))
		}
		if board[0].UserID != "b" || board[1].UserID != "a" || board[2].UserID != "c" {
			t.Errorf("expected order b,a,c; got %s,%s,%s", board[0].UserID, board[1].UserID, board[2].UserID)
		}
	})

	t.Run("longest streak breaks rate ties", func(t *testing.T) {
		stats := map[string]*MemberStats{
			"a": {UserID: "a", Balance: 2, DepositRate: 1.0, LongestStreak: 2},
			"b": {UserID: "b", Balance: 2, DepositRate: 1.0, LongestStreak: 4},
		}

		board := Leaderboard(stats)
		if board[0].UserID != "b" {
			t.Errorf("expected b first on longest streak, got %s", board[0].UserID)
		}
	})

	t.Run("full ties come out in stable user order", func(t *testing.T) {
		stats := map[string]*MemberStats{
			"z": {UserID: "z", Balance: 1, DepositRate: 1.0, LongestStreak: 1},
			"a": {UserID: "a", Balance: 1, DepositRate: 1.0, LongestStreak: 1},
		}

		for i := 0; i < 5; i++ {
			board := Leaderboard(stats)
			if board[0].UserID != "a" {
				t.Fatalf("expected deterministic order with a first, got %s", board[0].UserID)
			}
		}
	})
}

func TestMilestone(t *testing.T) {
	cases := []struct {
		balance int
		want    string
	}{
		{19, "none"},
		{20, "win"},
		{25, "win"},
		{-19, "none"},
		{-20, "loss"},
		{-30, "loss"},
		{0, "none"},
	}
	for _, tc := range cases {
		if got := Milestone(tc.balance); got != tc.want {
			t.Errorf("Milestone(%d) = %s, want %s", tc.balance, got, tc.want)
		}
	}
}
