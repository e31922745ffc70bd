package insights

import (
	"sort"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
)

const (
	timeMinTrades = 10
	topHours      = 3
)

// DayAnalysis names the best and worst weekdays by average pnl.
type DayAnalysis struct {
	BestDay     string                `json:"best_day"`
	BestDayAvg  float64               `json:"best_day_avg"`
	WorstDay    string                `json:"worst_day"`
	WorstDayAvg float64               `json:"worst_day_avg"`
	DailyStats  map[string]GroupStats `json:"daily_stats"`
}

// HourAnalysis ranks trading hours by average pnl.
type HourAnalysis struct {
	BestHours   []int              `json:"best_hours"`
	WorstHours  []int              `json:"worst_hours"`
	HourlyStats map[int]GroupStats `json:"hourly_stats"`
}

// TimeReport breaks performance down by weekday and hour of day.
type TimeReport struct {
	Days  *DayAnalysis  `json:"day_analysis,omitempty"`
	Hours *HourAnalysis `json:"hour_analysis,omitempty"`
}

// AnalyzeTimePatterns groups performance by weekday and, where clock
// times exist, by hour. Nil below 10 trades.
func AnalyzeTimePatterns(trades []*types.Trade) *TimeReport {
	if len(trades) < timeMinTrades {
		return nil
	}

	var usable []*types.Trade
	for _, t := range trades {
		if t != nil {
			usable = append(usable, t)
		}
	}
	if len(usable) < timeMinTrades {
		return nil
	}

	return &TimeReport{
		Days:  analyzeDays(usable),
		Hours: analyzeHours(usable),
	}
}

func analyzeDays(trades []*types.Trade) *DayAnalysis {
	groups := groupBy(trades, func(t *types.Trade) string { return t.Date.Weekday().String() })
	if len(groups) == 0 {
		return nil
	}

	analysis := &DayAnalysis{DailyStats: groups}
	first := true
	for day, stats := range groups {
		if first || stats.AvgPnL > analysis.BestDayAvg {
			analysis.BestDay, analysis.BestDayAvg = day, stats.AvgPnL
		}
		if first || stats.AvgPnL < analysis.WorstDayAvg {
			analysis.WorstDay, analysis.WorstDayAvg = day, stats.AvgPnL
		}
		first = false
	}
	return analysis
}

func analyzeHours(trades []*types.Trade) *HourAnalysis {
	stats := map[int]GroupStats{}
	for _, t := range trades {
		if t.ClockTime == "" {
			continue
		}
		ts := t.Timestamp()
		if ts.Equal(t.Date) {
			// Unparseable clock time.
			continue
		}
		pnl, _ := t.PnL.Float64()
		s := stats[ts.Hour()]
		s.TotalPnL += pnl
		s.Count++
		if pnl > 0 {
			s.Wins++
		}
		stats[ts.Hour()] = s
	}
	if len(stats) == 0 {
		return nil
	}

	hours := make([]int, 0, len(stats))
	for h, s := range stats {
		s.AvgPnL = round2(s.TotalPnL / float64(s.Count))
		s.TotalPnL = round2(s.TotalPnL)
		s.WinRate = round1(float64(s.Wins) / float64(s.Count) * 100)
		stats[h] = s
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if stats[hours[i]].AvgPnL == stats[hours[j]].AvgPnL {
			return hours[i] < hours[j]
		}
		return stats[hours[i]].AvgPnL > stats[hours[j]].AvgPnL
	})

	analysis := &HourAnalysis{HourlyStats: stats}
	for i, h := range hours {
		if i < topHours {
			analysis.BestHours = append(analysis.BestHours, h)
		}
		if i >= len(hours)-topHours {
			analysis.WorstHours = append(analysis.WorstHours, h)
		}
	}
	return analysis
}
