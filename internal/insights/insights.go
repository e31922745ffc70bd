package insights

import (
	"fmt"
	"math"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"go.uber.org/zap"
)

const (
	insightsMinTrades    = 10
	focusCorrThreshold   = 0.2
	stressCorrThreshold  = -0.2
	sleepCorrThreshold   = 0.15
	weakSymbolWinRate    = 40
	circuitBreakerStreak = 3
	avgRiskLimitPct      = 2
	overtradingWindow    = 30 * 24 * time.Hour
	overtradingCount     = 60
	nominalAccountSize   = 10000
)

// Generator produces the complete analysis bundle and the rule-based
// coaching messages.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates an insights generator.
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Analysis is the full insights bundle for one journal.
type Analysis struct {
	Psychology    *PsychologyReport  `json:"psychology"`
	TimePatterns  *TimeReport        `json:"time_patterns"`
	SetupsSymbols *SetupSymbolReport `json:"setups_symbols"`
	Messages      []string           `json:"insights"`
}

// ruleFacts is the evidence the message rules are evaluated against.
type ruleFacts struct {
	psych          *PsychologyReport
	times          *TimeReport
	setups         *SetupSymbolReport
	maxLossStreak  int
	avgRiskPct     float64
	recent30dCount int
}

type insightRule struct {
	applies func(*ruleFacts) bool
	message func(*ruleFacts) string
}

var insightRules = []insightRule{
	{
		applies: func(f *ruleFacts) bool { return f.psych != nil && f.psych.Mood != nil },
		message: func(f *ruleFacts) string {
			m := f.psych.Mood
			diff := m.BestMoodAvgPnL - m.WorstMoodAvgPnL
			return fmt.Sprintf("You trade best when feeling '%s' (%.2f better per trade than '%s').",
				m.BestMood, diff, m.WorstMood)
		},
	},
	{
		applies: func(f *ruleFacts) bool {
			return f.psych != nil && f.psych.Focus != nil && f.psych.Focus.Correlation > focusCorrThreshold
		},
		message: func(f *ruleFacts) string {
			return fmt.Sprintf("Higher focus pays off: %.2f difference between high and low focus trades.",
				f.psych.Focus.Difference)
		},
	},
	{
		applies: func(f *ruleFacts) bool {
			return f.psych != nil && f.psych.Stress != nil && f.psych.Stress.Correlation < stressCorrThreshold
		},
		message: func(f *ruleFacts) string {
			return fmt.Sprintf("Stress costs you %.2f per trade on average. Trade calmer.",
				math.Abs(f.psych.Stress.Difference))
		},
	},
	{
		applies: func(f *ruleFacts) bool {
			return f.psych != nil && f.psych.Sleep != nil && f.psych.Sleep.Correlation > sleepCorrThreshold
		},
		message: func(f *ruleFacts) string {
			return fmt.Sprintf("Good sleep means better trades: %.2f difference between rested and tired sessions.",
				f.psych.Sleep.Difference)
		},
	},
	{
		applies: func(f *ruleFacts) bool { return f.times != nil && f.times.Days != nil },
		message: func(f *ruleFacts) string {
			d := f.times.Days
			return fmt.Sprintf("Your best day is %s, your worst is %s. Plan your sessions accordingly.",
				d.BestDay, d.WorstDay)
		},
	},
	{
		applies: func(f *ruleFacts) bool { return f.setups != nil && f.setups.Setups != nil },
		message: func(f *ruleFacts) string {
			s := f.setups.Setups
			return fmt.Sprintf("Your best setup is '%s' at %.1f%% win rate. Lean into it.",
				s.Best, s.BestWinRate)
		},
	},
	{
		applies: func(f *ruleFacts) bool {
			return f.setups != nil && f.setups.Symbols != nil && f.setups.Symbols.WorstWinRate < weakSymbolWinRate
		},
		message: func(f *ruleFacts) string {
			s := f.setups.Symbols
			return fmt.Sprintf("%s sits at only %.1f%% win rate. Consider avoiding it.",
				s.Worst, s.WorstWinRate)
		},
	},
	{
		applies: func(f *ruleFacts) bool { return f.maxLossStreak >= circuitBreakerStreak },
		message: func(f *ruleFacts) string {
			return fmt.Sprintf("You hit %d consecutive losses. Adopt a circuit-breaker rule.",
				f.maxLossStreak)
		},
	},
	{
		applies: func(f *ruleFacts) bool { return f.avgRiskPct > avgRiskLimitPct },
		message: func(f *ruleFacts) string {
			return fmt.Sprintf("Average risk per trade is %.1f%%. Bring it below 2%%.",
				f.avgRiskPct)
		},
	},
	{
		applies: func(f *ruleFacts) bool { return f.recent30dCount > overtradingCount },
		message: func(f *ruleFacts) string {
			return fmt.Sprintf("%d trades in the last 30 days is more than 2 per day. Possible overtrading.",
				f.recent30dCount)
		},
	},
}

// Complete runs every analysis plus the message rules.
func (g *Generator) Complete(trades []*types.Trade, accountSize float64, now time.Time) *Analysis {
	return &Analysis{
		Psychology:    AnalyzePsychology(trades),
		TimePatterns:  AnalyzeTimePatterns(trades),
		SetupsSymbols: AnalyzeSetupsSymbols(trades),
		Messages:      g.Generate(trades, accountSize, now),
	}
}

// Generate evaluates the coaching rule table against the journal. Below
// 10 trades it returns a single onboarding message; when nothing fires
// it returns a single all-clear.
func (g *Generator) Generate(trades []*types.Trade, accountSize float64, now time.Time) []string {
	if len(trades) < insightsMinTrades {
		return []string{"Add more trades (minimum 10) to unlock insights."}
	}
	if accountSize <= 0 {
		accountSize = nominalAccountSize
	}

	facts := &ruleFacts{
		psych:          AnalyzePsychology(trades),
		times:          AnalyzeTimePatterns(trades),
		setups:         AnalyzeSetupsSymbols(trades),
		maxLossStreak:  maxLossStreak(trades),
		avgRiskPct:     avgRiskPct(trades, accountSize),
		recent30dCount: countSince(trades, now.Add(-overtradingWindow)),
	}

	var messages []string
	for _, rule := range insightRules {
		if rule.applies(facts) {
			messages = append(messages, rule.message(facts))
		}
	}
	if len(messages) == 0 {
		messages = append(messages, "Well balanced. Stay consistent and follow your strategy.")
	}

	if g.logger != nil {
		g.logger.Debug("Generated insights",
			zap.Int("trades", len(trades)),
			zap.Int("messages", len(messages)))
	}
	return messages
}

func maxLossStreak(trades []*types.Trade) int {
	ordered := make([]*types.Trade, 0, len(trades))
	for _, t := range trades {
		if t != nil {
			ordered = append(ordered, t)
		}
	}
	types.SortChronological(ordered)

	current, best := 0, 0
	for _, t := range ordered {
		if t.PnL.Sign() < 0 {
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

func avgRiskPct(trades []*types.Trade, accountSize float64) float64 {
	var sum float64
	count := 0
	for _, t := range trades {
		if t == nil {
			continue
		}
		pnl, _ := t.PnL.Float64()
		sum += math.Abs(pnl) / accountSize * 100
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func countSince(trades []*types.Trade, cutoff time.Time) int {
	count := 0
	for _, t := range trades {
		if t != nil && !t.Date.Before(cutoff) {
			count++
		}
	}
	return count
}
