// Package gamification implements streaks, achievements, levels and
// weekly challenges over a user's trade history. All predicates are
// pure folds over a snapshot; the caller supplies the reference time.
package gamification

import (
	"sort"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
)

const (
	earlyTradeHour = 9
	revengeWindow  = time.Hour

	// Risk discipline is judged against a nominal account when the
	// caller has no better figure.
	assumedAccountSize = 10000
)

// StreakReport describes the open and best streaks of a journal.
type StreakReport struct {
	CurrentWinStreak  int `json:"current_win_streak"`
	CurrentLossStreak int `json:"current_loss_streak"`
	MaxWinStreak      int `json:"max_win_streak"`
	TotalTrades       int `json:"total_trades"`
}

// StatsSummary is the headline block for the gamification view.
type StatsSummary struct {
	TotalTrades   int     `json:"total_trades"`
	WinRate       float64 `json:"win_rate"`
	TotalPnL      float64 `json:"total_pnl"`
	BestTrade     float64 `json:"best_trade"`
	WorstTrade    float64 `json:"worst_trade"`
	UniqueSymbols int     `json:"unique_symbols"`
}

// MaxWinStreak returns the longest run of strictly-profitable trades in
// chronological order.
func MaxWinStreak(trades []*types.Trade) int {
	ordered := sortedCopy(trades)

	current, best := 0, 0
	for _, t := range ordered {
		if t.PnL.Sign() > 0 {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}
	return best
}

// CurrentStreaks walks back from the most recent trade. A break-even
// trade ends whichever streak is open.
func CurrentStreaks(trades []*types.Trade) StreakReport {
	report := StreakReport{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return report
	}

	ordered := sortedCopy(trades)
	report.MaxWinStreak = MaxWinStreak(ordered)

	streak := 0
	winning := false
	for i := len(ordered) - 1; i >= 0; i-- {
		sign := ordered[i].PnL.Sign()
		if sign == 0 {
			break
		}
		isWin := sign > 0
		if streak == 0 {
			winning = isWin
		} else if isWin != winning {
			break
		}
		streak++
	}

	if winning {
		report.CurrentWinStreak = streak
	} else {
		report.CurrentLossStreak = streak
	}
	return report
}

// TradingDaysStreak returns the longest run of distinct trading days
// where each day follows the previous by one day, or by up to three days
// when the previous day falls on a Friday, Saturday or Sunday. The gap
// rule only inspects the earlier day of each pair, so a midweek 3-day
// gap breaks the streak while the same gap off a Friday does not.
func TradingDaysStreak(trades []*types.Trade) int {
	if len(trades) == 0 {
		return 0
	}

	seen := map[time.Time]bool{}
	var days []time.Time
	for _, t := range trades {
		if t == nil {
			continue
		}
		// Day gaps are pure calendar arithmetic; re-anchoring the date
		// in UTC keeps a DST-shortened day from truncating to gap 0.
		d := t.Day()
		d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return 0
	}
	sortDays(days)

	best, current := 1, 1
	for i := 1; i < len(days); i++ {
		gap := int(days[i].Sub(days[i-1]).Hours() / 24)
		if gap == 1 || (gap <= 3 && isWeekendAdjacent(days[i-1].Weekday())) {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 1
		}
	}
	return best
}

func isWeekendAdjacent(wd time.Weekday) bool {
	return wd == time.Friday || wd == time.Saturday || wd == time.Sunday
}

// HasComeback reports whether any 3-loss streak was later recovered: the
// summed pnl of the following up-to-7 trades exceeds the magnitude of
// the 3-loss drawdown.
func HasComeback(trades []*types.Trade) bool {
	if len(trades) < 4 {
		return false
	}

	ordered := sortedCopy(trades)
	pnls := make([]float64, len(ordered))
	for i, t := range ordered {
		pnls[i], _ = t.PnL.Float64()
	}

	for i := 0; i+3 < len(pnls); i++ {
		if pnls[i] >= 0 || pnls[i+1] >= 0 || pnls[i+2] >= 0 {
			continue
		}
		drawdown := -(pnls[i] + pnls[i+1] + pnls[i+2])

		end := i + 10
		if end > len(pnls) {
			end = len(pnls)
		}
		var recovery float64
		for j := i + 3; j < end; j++ {
			recovery += pnls[j]
		}
		if recovery > drawdown {
			return true
		}
	}
	return false
}

// NoRevengeTrading reports whether no trade was opened within one hour
// of a preceding loss. Trades without a clock time are assumed at noon,
// which keeps same-day entries an hour apart by default.
func NoRevengeTrading(trades []*types.Trade) bool {
	if len(trades) < 2 {
		return true
	}

	ordered := sortedCopy(trades)
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i].PnL.Sign() >= 0 {
			continue
		}
		lossAt := noonTimestamp(ordered[i])
		nextAt := noonTimestamp(ordered[i+1])
		if nextAt.Sub(lossAt) < revengeWindow {
			return false
		}
	}
	return true
}

// noonTimestamp mirrors Timestamp but defaults a missing clock time to
// 12:00 so that untimed same-day trades don't collapse onto midnight.
func noonTimestamp(t *types.Trade) time.Time {
	if t.ClockTime != "" {
		return t.Timestamp()
	}
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 12, 0, 0, 0, t.Date.Location())
}

// CountEarlyTrades counts trades with a clock time before 9 AM.
func CountEarlyTrades(trades []*types.Trade) int {
	count := 0
	for _, t := range trades {
		if t == nil || t.ClockTime == "" {
			continue
		}
		ts := t.Timestamp()
		if ts.Equal(t.Date) {
			// Clock time present but unparseable.
			continue
		}
		if ts.Hour() < earlyTradeHour {
			count++
		}
	}
	return count
}

// HasProfitableWeek reports whether the previous full week, Monday
// through Sunday relative to now, closed with positive total pnl.
func HasProfitableWeek(trades []*types.Trade, now time.Time) bool {
	weekStart := startOfDay(now).AddDate(0, 0, -mondayOffset(now)-7)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var total float64
	found := false
	for _, t := range trades {
		if t == nil {
			continue
		}
		d := t.Day()
		if d.Before(weekStart) || !d.Before(weekEnd) {
			continue
		}
		pnl, _ := t.PnL.Float64()
		total += pnl
		found = true
	}
	return found && total > 0
}

// HasProfitableMonth reports whether the previous calendar month closed
// with positive total pnl.
func HasProfitableMonth(trades []*types.Trade, now time.Time) bool {
	year, month := now.Year(), now.Month()
	if month == time.January {
		year--
		month = time.December
	} else {
		month--
	}

	var total float64
	found := false
	for _, t := range trades {
		if t == nil || t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		pnl, _ := t.PnL.Float64()
		total += pnl
		found = true
	}
	return found && total > 0
}

// FollowsRiskManagement reports whether, over at least 30 trades, no
// single loss exceeded 2% of the account. Pass accountSize <= 0 to use
// the nominal default.
func FollowsRiskManagement(trades []*types.Trade, accountSize float64) bool {
	if len(trades) < 30 {
		return false
	}
	if accountSize <= 0 {
		accountSize = assumedAccountSize
	}
	limit := accountSize * 0.02

	for _, t := range trades {
		if t == nil {
			continue
		}
		pnl, _ := t.PnL.Float64()
		if pnl < 0 && -pnl > limit {
			return false
		}
	}
	return true
}

// Summary computes the headline stats block.
func Summary(trades []*types.Trade) StatsSummary {
	s := StatsSummary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	symbols := map[string]bool{}
	wins := 0
	for i, t := range trades {
		pnl, _ := t.PnL.Float64()
		s.TotalPnL += pnl
		if pnl > 0 {
			wins++
		}
		if i == 0 || pnl > s.BestTrade {
			s.BestTrade = pnl
		}
		if i == 0 || pnl < s.WorstTrade {
			s.WorstTrade = pnl
		}
		symbols[t.Symbol] = true
	}
	s.WinRate = float64(wins) / float64(len(trades)) * 100
	s.UniqueSymbols = len(symbols)
	return s
}

func winRatePct(trades []*types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.PnL.Sign() > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades)) * 100
}

func sortedCopy(trades []*types.Trade) []*types.Trade {
	ordered := make([]*types.Trade, 0, len(trades))
	for _, t := range trades {
		if t != nil {
			ordered = append(ordered, t)
		}
	}
	types.SortChronological(ordered)
	return ordered
}

func sortDays(days []time.Time) {
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOffset is days since the most recent Monday.
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
