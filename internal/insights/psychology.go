// Package insights derives behavioural and pattern analysis from a
// journal snapshot: psychology correlations, time-of-day performance,
// setup and symbol statistics, and rule-based coaching messages.
package insights

import (
	"math"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
)

const (
	psychologyMinTrades = 10
	highScale           = 4
	lowScale            = 2
)

// GroupStats aggregates pnl over one categorical bucket.
type GroupStats struct {
	AvgPnL   float64 `json:"avg_pnl"`
	TotalPnL float64 `json:"total_pnl"`
	Count    int     `json:"count"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"winrate"`
}

// FactorAnalysis relates one 1-5 psychology scale to pnl. High and low
// averages cover scores of 4-5 and 1-2 respectively.
type FactorAnalysis struct {
	Correlation float64 `json:"correlation"`
	HighAvg     float64 `json:"high_avg"`
	LowAvg      float64 `json:"low_avg"`
	Difference  float64 `json:"difference"`
}

// MoodAnalysis names the best and worst moods by average pnl.
type MoodAnalysis struct {
	BestMood        string                `json:"best_mood"`
	BestMoodAvgPnL  float64               `json:"best_mood_avg_pnl"`
	WorstMood       string                `json:"worst_mood"`
	WorstMoodAvgPnL float64               `json:"worst_mood_avg_pnl"`
	MoodGroups      map[string]GroupStats `json:"mood_groups"`
}

// PsychologyReport correlates recorded psychology with performance.
type PsychologyReport struct {
	Mood       *MoodAnalysis   `json:"mood_analysis,omitempty"`
	Focus      *FactorAnalysis `json:"focus_analysis,omitempty"`
	Stress     *FactorAnalysis `json:"stress_analysis,omitempty"`
	Sleep      *FactorAnalysis `json:"sleep_analysis,omitempty"`
	Confidence *FactorAnalysis `json:"confidence_analysis,omitempty"`
}

// AnalyzePsychology correlates mood and the 1-5 psychology scales with
// pnl. Only trades carrying both a mood and a focus score count toward
// the 10-trade minimum; below it the report is nil.
func AnalyzePsychology(trades []*types.Trade) *PsychologyReport {
	if len(trades) < psychologyMinTrades {
		return nil
	}

	var usable []*types.Trade
	for _, t := range trades {
		if t != nil && t.Mood != "" && t.FocusLevel > 0 {
			usable = append(usable, t)
		}
	}
	if len(usable) < psychologyMinTrades {
		return nil
	}

	report := &PsychologyReport{
		Mood: analyzeMood(usable),
		Focus: analyzeFactor(usable, func(t *types.Trade) int { return t.FocusLevel },
			func(hi, lo float64) float64 { return hi - lo }),
		// Stress works the other way round: low stress should beat high.
		Stress: analyzeFactor(usable, func(t *types.Trade) int { return t.StressLevel },
			func(hi, lo float64) float64 { return lo - hi }),
		Sleep: analyzeFactor(usable, func(t *types.Trade) int { return t.SleepQuality },
			func(hi, lo float64) float64 { return hi - lo }),
		Confidence: analyzeFactor(usable, func(t *types.Trade) int { return t.PreTradeConfidence },
			func(hi, lo float64) float64 { return hi - lo }),
	}
	return report
}

func analyzeMood(trades []*types.Trade) *MoodAnalysis {
	groups := groupBy(trades, func(t *types.Trade) string { return t.Mood })
	if len(groups) == 0 {
		return nil
	}

	analysis := &MoodAnalysis{MoodGroups: groups}
	first := true
	for mood, stats := range groups {
		if first || stats.AvgPnL > analysis.BestMoodAvgPnL {
			analysis.BestMood, analysis.BestMoodAvgPnL = mood, stats.AvgPnL
		}
		if first || stats.AvgPnL < analysis.WorstMoodAvgPnL {
			analysis.WorstMood, analysis.WorstMoodAvgPnL = mood, stats.AvgPnL
		}
		first = false
	}
	return analysis
}

func analyzeFactor(trades []*types.Trade, score func(*types.Trade) int, diff func(hi, lo float64) float64) *FactorAnalysis {
	var scores, pnls, high, low []float64
	for _, t := range trades {
		s := score(t)
		if s <= 0 {
			continue
		}
		pnl, _ := t.PnL.Float64()
		scores = append(scores, float64(s))
		pnls = append(pnls, pnl)
		if s >= highScale {
			high = append(high, pnl)
		} else if s <= lowScale {
			low = append(low, pnl)
		}
	}
	if len(scores) < 2 {
		return nil
	}

	hi, lo := mean(high), mean(low)
	return &FactorAnalysis{
		Correlation: round3(pearson(scores, pnls)),
		HighAvg:     round2(hi),
		LowAvg:      round2(lo),
		Difference:  round2(diff(hi, lo)),
	}
}

func groupBy(trades []*types.Trade, key func(*types.Trade) string) map[string]GroupStats {
	groups := map[string]GroupStats{}
	for _, t := range trades {
		k := key(t)
		if k == "" {
			continue
		}
		pnl, _ := t.PnL.Float64()
		stats := groups[k]
		stats.TotalPnL += pnl
		stats.Count++
		if pnl > 0 {
			stats.Wins++
		}
		groups[k] = stats
	}
	for k, stats := range groups {
		stats.AvgPnL = round2(stats.TotalPnL / float64(stats.Count))
		stats.TotalPnL = round2(stats.TotalPnL)
		stats.WinRate = round1(float64(stats.Wins) / float64(stats.Count) * 100)
		groups[k] = stats
	}
	return groups
}

// pearson is the sample correlation coefficient; 0 when either side has
// zero variance.
func pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
