package gamification

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

func TestCheckAchievementsFirstTrade(t *testing.T) {
	trades := dailyTrades(friday, 50)

	unlocked, newUnlocks := CheckAchievements(trades, nil, testNow)
	if len(unlocked) != 0 {
		t.Errorf("nothing was unlocked before, got %v", unlocked)
	}

	ids := map[string]bool{}
	for _, a := range newUnlocks {
		ids[a.ID] = true
	}
	if !ids["first_trade"] || !ids["first_win"] {
		t.Errorf("expected first_trade and first_win, got %v", ids)
	}
	if ids["10_trades"] {
		t.Error("10_trades must not unlock with a single trade")
	}
}

func TestCheckAchievementsKeepsUnlocked(t *testing.T) {
	trades := dailyTrades(friday, 50)

	unlocked, newUnlocks := CheckAchievements(trades, []string{"first_trade"}, testNow)
	if len(unlocked) != 1 || unlocked[0] != "first_trade" {
		t.Errorf("unlocked = %v, want [first_trade]", unlocked)
	}
	for _, a := range newUnlocks {
		if a.ID == "first_trade" {
			t.Error("already-unlocked achievement reported as new")
		}
	}
}

func TestCheckAchievementsWinStreak(t *testing.T) {
	trades := dailyTrades(friday.AddDate(0, 0, -10), 10, 20, 30, 40, 50)

	_, newUnlocks := CheckAchievements(trades, nil, testNow)
	ids := map[string]bool{}
	for _, a := range newUnlocks {
		ids[a.ID] = true
	}
	if !ids["win_streak_3"] || !ids["win_streak_5"] {
		t.Errorf("expected streak achievements, got %v", ids)
	}
	if ids["win_streak_10"] {
		t.Error("win_streak_10 must not unlock at 5 wins")
	}
}

func TestCheckAchievementsEmptyHistory(t *testing.T) {
	unlocked, newUnlocks := CheckAchievements(nil, nil, testNow)
	if len(unlocked) != 0 || len(newUnlocks) != 0 {
		t.Errorf("empty history unlocked %v / %v", unlocked, newUnlocks)
	}
}

func TestCalculateLevel(t *testing.T) {
	cases := []struct {
		xp       int
		level    int
		title    string
		xpToNext int
		hasNext  bool
	}{
		{0, 1, "Novice Trader", 100, true},
		{99, 1, "Novice Trader", 1, true},
		{100, 2, "Apprentice", 150, true},
		{5200, 8, "Legend", 2300, true},
		{10000, 10, "Elite Trader", 0, false},
		{15000, 10, "Elite Trader", 0, false},
	}
	for _, tc := range cases {
		report := CalculateLevel(tc.xp)
		if report.CurrentLevel != tc.level || report.Title != tc.title {
			t.Errorf("xp %d: level %d %q, want %d %q",
				tc.xp, report.CurrentLevel, report.Title, tc.level, tc.title)
		}
		if report.XPToNextLevel != tc.xpToNext {
			t.Errorf("xp %d: xp_to_next = %d, want %d", tc.xp, report.XPToNextLevel, tc.xpToNext)
		}
		if (report.NextLevel != nil) != tc.hasNext {
			t.Errorf("xp %d: next level presence = %v, want %v", tc.xp, report.NextLevel != nil, tc.hasNext)
		}
	}
}

func TestEvaluateChallenges(t *testing.T) {
	week := dailyTrades(friday.AddDate(0, 0, -4), 10, 20, -5, 30, 40)
	for i := range week {
		week[i].Notes = "setup held"
	}

	statuses := EvaluateChallenges(week)
	if len(statuses) != len(WeeklyChallenges) {
		t.Fatalf("statuses = %d, want %d", len(statuses), len(WeeklyChallenges))
	}

	byID := map[string]bool{}
	for _, s := range statuses {
		byID[s.ID] = s.Completed
	}
	if byID["week_10_trades"] {
		t.Error("volume challenge needs 10 trades")
	}
	if !byID["week_60_winrate"] {
		t.Error("accuracy challenge: 4 of 5 wins is 80%")
	}
	if !byID["week_positive_pnl"] {
		t.Error("profit challenge: pnl is positive")
	}
	if !byID["week_journal_all"] {
		t.Error("journaling challenge: every trade has notes")
	}
	if !byID["week_no_revenge"] {
		t.Error("discipline challenge: one trade per day")
	}
}

func TestEvaluateChallengesEmptyWeek(t *testing.T) {
	statuses := EvaluateChallenges(nil)
	for _, s := range statuses {
		if s.Completed && s.ID != "week_no_revenge" {
			t.Errorf("%s completed on an empty week", s.ID)
		}
	}
}

func TestTotalXP(t *testing.T) {
	if got := TotalXP([]string{"first_trade", "first_win"}); got != 35 {
		t.Errorf("total xp = %d, want 35", got)
	}
	if got := TotalXP([]string{"unknown"}); got != 0 {
		t.Errorf("unknown id xp = %d, want 0", got)
	}
}
