package gamification

import (
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
)

// Achievement is one unlockable milestone.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XP          int    `json:"xp"`

	check func(trades []*types.Trade, now time.Time) bool
}

// Level is one rung of the XP ladder.
type Level struct {
	Level int    `json:"level"`
	XP    int    `json:"xp"`
	Title string `json:"title"`
}

// LevelReport locates a trader on the XP ladder.
type LevelReport struct {
	CurrentLevel   int    `json:"current_level"`
	Title          string `json:"title"`
	TotalXP        int    `json:"total_xp"`
	CurrentLevelXP int    `json:"current_level_xp"`
	NextLevel      *Level `json:"next_level,omitempty"`
	XPToNextLevel  int    `json:"xp_to_next_level"`
}

// Challenge is one weekly challenge definition.
type Challenge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XP          int    `json:"xp"`

	check func(weekTrades []*types.Trade) bool
}

// ChallengeStatus is a challenge plus its completion state for the week.
type ChallengeStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Completed   bool   `json:"completed"`
}

func countTrades(n int) func([]*types.Trade, time.Time) bool {
	return func(trades []*types.Trade, _ time.Time) bool { return len(trades) >= n }
}

// Achievements is the milestone catalog, evaluated in order.
var Achievements = []Achievement{
	{ID: "first_trade", Name: "First Trade", Description: "Log your first trade", XP: 10,
		check: countTrades(1)},
	{ID: "10_trades", Name: "Consistent Trader", Description: "Log 10 trades", XP: 50,
		check: countTrades(10)},
	{ID: "50_trades", Name: "Active Trader", Description: "Log 50 trades", XP: 150,
		check: countTrades(50)},
	{ID: "100_trades", Name: "Veteran Trader", Description: "Log 100 trades", XP: 300,
		check: countTrades(100)},
	{ID: "500_trades", Name: "Master Trader", Description: "Log 500 trades", XP: 1000,
		check: countTrades(500)},
	{ID: "first_win", Name: "First Victory", Description: "Win your first trade", XP: 25,
		check: func(trades []*types.Trade, _ time.Time) bool {
			for _, t := range trades {
				if t != nil && t.PnL.Sign() > 0 {
					return true
				}
			}
			return false
		}},
	{ID: "win_streak_3", Name: "Hot Hand", Description: "Win 3 trades in a row", XP: 75,
		check: func(trades []*types.Trade, _ time.Time) bool { return MaxWinStreak(trades) >= 3 }},
	{ID: "win_streak_5", Name: "On Fire", Description: "Win 5 trades in a row", XP: 150,
		check: func(trades []*types.Trade, _ time.Time) bool { return MaxWinStreak(trades) >= 5 }},
	{ID: "win_streak_10", Name: "Unstoppable", Description: "Win 10 trades in a row", XP: 500,
		check: func(trades []*types.Trade, _ time.Time) bool { return MaxWinStreak(trades) >= 10 }},
	{ID: "profitable_week", Name: "Green Week", Description: "End the week profitable", XP: 100,
		check: func(trades []*types.Trade, now time.Time) bool { return HasProfitableWeek(trades, now) }},
	{ID: "profitable_month", Name: "Green Month", Description: "End the month profitable", XP: 250,
		check: func(trades []*types.Trade, now time.Time) bool { return HasProfitableMonth(trades, now) }},
	{ID: "50_percent_winrate", Name: "Balanced", Description: "Achieve 50% win rate (min 20 trades)", XP: 100,
		check: func(trades []*types.Trade, _ time.Time) bool {
			return len(trades) >= 20 && winRatePct(trades) >= 50
		}},
	{ID: "70_percent_winrate", Name: "Sharp Shooter", Description: "Achieve 70% win rate (min 50 trades)", XP: 300,
		check: func(trades []*types.Trade, _ time.Time) bool {
			return len(trades) >= 50 && winRatePct(trades) >= 70
		}},
	{ID: "risk_manager", Name: "Risk Manager", Description: "Never risk more than 2% (min 30 trades)", XP: 200,
		check: func(trades []*types.Trade, _ time.Time) bool { return FollowsRiskManagement(trades, 0) }},
	{ID: "journal_master", Name: "Journal Master", Description: "Add notes to 50 trades", XP: 150,
		check: func(trades []*types.Trade, _ time.Time) bool {
			count := 0
			for _, t := range trades {
				if t != nil && t.Notes != "" {
					count++
				}
			}
			return count >= 50
		}},
	{ID: "early_bird", Name: "Early Bird", Description: "Trade before 9 AM 10 times", XP: 75,
		check: func(trades []*types.Trade, _ time.Time) bool { return CountEarlyTrades(trades) >= 10 }},
	{ID: "comeback_king", Name: "Comeback King", Description: "Recover from a 3-trade losing streak to profit", XP: 200,
		check: func(trades []*types.Trade, _ time.Time) bool { return HasComeback(trades) }},
	{ID: "diversifier", Name: "Diversifier", Description: "Trade 10 different symbols", XP: 100,
		check: func(trades []*types.Trade, _ time.Time) bool {
			symbols := map[string]bool{}
			for _, t := range trades {
				if t != nil {
					symbols[t.Symbol] = true
				}
			}
			return len(symbols) >= 10
		}},
	{ID: "perfectionist", Name: "Perfectionist", Description: "5 trades with R-multiple above 3", XP: 250,
		check: func(trades []*types.Trade, _ time.Time) bool {
			count := 0
			for _, t := range trades {
				if t != nil && t.RMultiple > 3 {
					count++
				}
			}
			return count >= 5
		}},
	{ID: "consistency", Name: "Consistent Performer", Description: "Trade for 30 consecutive days", XP: 500,
		check: func(trades []*types.Trade, _ time.Time) bool { return TradingDaysStreak(trades) >= 30 }},
}

// Levels is the XP ladder, ascending.
var Levels = []Level{
	{Level: 1, XP: 0, Title: "Novice Trader"},
	{Level: 2, XP: 100, Title: "Apprentice"},
	{Level: 3, XP: 250, Title: "Intermediate"},
	{Level: 4, XP: 500, Title: "Advanced"},
	{Level: 5, XP: 1000, Title: "Expert"},
	{Level: 6, XP: 2000, Title: "Master"},
	{Level: 7, XP: 3500, Title: "Grand Master"},
	{Level: 8, XP: 5000, Title: "Legend"},
	{Level: 9, XP: 7500, Title: "Pro Trader"},
	{Level: 10, XP: 10000, Title: "Elite Trader"},
}

// WeeklyChallenges is the rotating challenge set, evaluated against the
// current week's trades only.
var WeeklyChallenges = []Challenge{
	{ID: "week_10_trades", Name: "Volume Challenge", Description: "Complete 10 trades this week", XP: 100,
		check: func(trades []*types.Trade) bool { return len(trades) >= 10 }},
	{ID: "week_60_winrate", Name: "Accuracy Challenge", Description: "Achieve 60% win rate this week (min 5 trades)", XP: 150,
		check: func(trades []*types.Trade) bool {
			return len(trades) >= 5 && winRatePct(trades) >= 60
		}},
	{ID: "week_positive_pnl", Name: "Profit Challenge", Description: "End the week with positive P&L", XP: 100,
		check: func(trades []*types.Trade) bool {
			var total float64
			for _, t := range trades {
				pnl, _ := t.PnL.Float64()
				total += pnl
			}
			return total > 0
		}},
	{ID: "week_journal_all", Name: "Journaling Challenge", Description: "Add notes to all trades this week", XP: 75,
		check: func(trades []*types.Trade) bool {
			if len(trades) == 0 {
				return false
			}
			for _, t := range trades {
				if t.Notes == "" {
					return false
				}
			}
			return true
		}},
	{ID: "week_no_revenge", Name: "Discipline Challenge", Description: "No trades within 1 hour of a loss", XP: 125,
		check: NoRevengeTrading},
}

// CheckAchievements splits the catalog into already-unlocked milestones
// and ones newly completed by the current history.
func CheckAchievements(trades []*types.Trade, unlockedIDs []string, now time.Time) (unlocked []string, newUnlocks []Achievement) {
	have := make(map[string]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		have[id] = true
	}

	for _, a := range Achievements {
		if have[a.ID] {
			unlocked = append(unlocked, a.ID)
			continue
		}
		if a.check(trades, now) {
			newUnlocks = append(newUnlocks, a)
		}
	}
	return unlocked, newUnlocks
}

// CalculateLevel locates total XP on the ladder.
func CalculateLevel(totalXP int) LevelReport {
	current := Levels[0]
	for _, l := range Levels {
		if totalXP >= l.XP {
			current = l
		} else {
			break
		}
	}

	report := LevelReport{
		CurrentLevel:   current.Level,
		Title:          current.Title,
		TotalXP:        totalXP,
		CurrentLevelXP: current.XP,
	}
	if current.Level < len(Levels) {
		next := Levels[current.Level]
		report.NextLevel = &next
		report.XPToNextLevel = next.XP - totalXP
	}
	return report
}

// EvaluateChallenges reports completion for each weekly challenge given
// the week's trades.
func EvaluateChallenges(weekTrades []*types.Trade) []ChallengeStatus {
	statuses := make([]ChallengeStatus, 0, len(WeeklyChallenges))
	for _, c := range WeeklyChallenges {
		statuses = append(statuses, ChallengeStatus{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			XP:          c.XP,
			Completed:   c.check(weekTrades),
		})
	}
	return statuses
}

// TotalXP sums the XP of the given achievement ids.
func TotalXP(achievementIDs []string) int {
	byID := make(map[string]int, len(Achievements))
	for _, a := range Achievements {
		byID[a.ID] = a.XP
	}
	total := 0
	for _, id := range achievementIDs {
		total += byID[id]
	}
	return total
}
