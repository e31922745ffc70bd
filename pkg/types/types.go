// Package types provides shared type definitions for the trading journal backend.
package types

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the direction of a closed position.
type Side string

const (
	SideLong  Side = "Long"
	SideShort Side = "Short"
)

// Severity classifies how urgent an alert is.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Trade represents one closed position in a user's journal.
// Monetary fields use decimal to keep PnL derivation exact; statistics
// downstream convert to float64 once.
type Trade struct {
	ID       int64           `json:"id"`
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Entry    decimal.Decimal `json:"entry_price"`
	Exit     decimal.Decimal `json:"exit_price"`
	Quantity decimal.Decimal `json:"quantity"`
	PnL      decimal.Decimal `json:"pnl"`

	// RMultiple is PnL expressed in units of 1% of account size,
	// filled in by the store when an account size is known.
	RMultiple float64 `json:"r_multiple,omitempty"`

	// Date carries the calendar date; ClockTime is an optional
	// "HH:MM" or "HH:MM:SS" execution time used for intraday ordering.
	Date      time.Time `json:"date"`
	ClockTime string    `json:"time,omitempty"`

	Setup           string `json:"setup,omitempty"`
	Mood            string `json:"mood,omitempty"`
	MarketCondition string `json:"market_condition,omitempty"`
	Notes           string `json:"notes,omitempty"`

	// Psychology scalars on a 1-5 scale; zero means not recorded.
	FocusLevel         int `json:"focus_level,omitempty"`
	StressLevel        int `json:"stress_level,omitempty"`
	SleepQuality       int `json:"sleep_quality,omitempty"`
	PreTradeConfidence int `json:"pre_trade_confidence,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Timestamp combines Date and ClockTime into a single instant used for
// all ordering-sensitive computations. A missing or unparseable clock
// time sorts at the start of the day.
func (t *Trade) Timestamp() time.Time {
	if t.ClockTime == "" {
		return t.Date
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if ct, err := time.Parse(layout, t.ClockTime); err == nil {
			return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(),
				ct.Hour(), ct.Minute(), ct.Second(), 0, t.Date.Location())
		}
	}
	return t.Date
}

// Day returns the trade's calendar date truncated to midnight.
func (t *Trade) Day() time.Time {
	return time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, t.Date.Location())
}

// SortChronological orders trades in place by (timestamp, id) ascending.
// Ties on the same instant fall back to insertion order via the id.
func SortChronological(trades []*Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		ti, tj := trades[i].Timestamp(), trades[j].Timestamp()
		if ti.Equal(tj) {
			return trades[i].ID < trades[j].ID
		}
		return ti.Before(tj)
	})
}

// Alert is one triggered risk or behaviour warning.
type Alert struct {
	Type      string                 `json:"type"`
	Severity  Severity               `json:"severity"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// PerformanceReport aggregates statistics over a whole trade set.
// An empty trade set yields the zero value, never an error.
type PerformanceReport struct {
	TotalTrades    int     `json:"total_trades"`
	SkippedTrades  int     `json:"skipped_trades,omitempty"`
	TotalProfit    float64 `json:"total_profit"`
	WinRate        float64 `json:"win_rate"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	ProfitFactor   float64 `json:"profit_factor"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	Expectancy     float64 `json:"expectancy"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
}

// KellyReport is the Kelly criterion sizing recommendation.
// Percentages are on a 0-100 scale.
type KellyReport struct {
	KellyPct       float64 `json:"kelly_pct"`
	HalfKellyPct   float64 `json:"half_kelly_pct"`
	WinRate        float64 `json:"win_rate"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	WinLossRatio   float64 `json:"win_loss_ratio"`
	TradesAnalyzed int     `json:"trades_analyzed"`
}

// ExpectancyReport is the expected PnL per trade.
type ExpectancyReport struct {
	Expectancy     float64 `json:"expectancy"`
	WinPct         float64 `json:"win_pct"`
	LossPct        float64 `json:"loss_pct"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	TradesAnalyzed int     `json:"trades_analyzed"`
}

// RuinReport is a coarse consecutive-loss ruin approximation. It assumes
// every loss burns a full risk unit and ignores interleaved wins; treat
// it as a heuristic, not a rigorous ruin-probability model.
type RuinReport struct {
	RuinProbabilityPct float64 `json:"ruin_probability_pct"`
	TradesToHalfLoss   float64 `json:"trades_to_50pct_loss"`
	RiskPerTradePct    float64 `json:"risk_per_trade_pct"`
	WinRatePct         float64 `json:"win_rate_pct"`
}

// PositionSizeReport is the output of risk-based position sizing.
type PositionSizeReport struct {
	Shares        float64 `json:"shares"`
	PositionValue float64 `json:"position_value"`
	RiskAmount    float64 `json:"risk_amount"`
	RiskPct       float64 `json:"risk_pct"`
	PriceDiff     float64 `json:"price_diff"`
	Leverage      float64 `json:"leverage"`
}

// RiskRewardReport describes a planned trade's risk/reward profile.
type RiskRewardReport struct {
	Risk      float64 `json:"risk"`
	Reward    float64 `json:"reward"`
	Ratio     float64 `json:"ratio"`
	RiskPct   float64 `json:"risk_pct"`
	RewardPct float64 `json:"reward_pct"`
}

// RequiredWinRateReport is the break-even win rate for a given R:R ratio.
type RequiredWinRateReport struct {
	RequiredWinRatePct float64 `json:"required_winrate_pct"`
	RiskRewardRatio    float64 `json:"risk_reward_ratio"`
}

// ProfitTarget is one R-multiple based exit level.
type ProfitTarget struct {
	RMultiple    float64 `json:"r_multiple"`
	ProfitAmount float64 `json:"profit_amount"`
	TargetLong   float64 `json:"target_price_long"`
	TargetShort  float64 `json:"target_price_short"`
}

// RiskManagementReport bundles the sizing-relevant statistics for one journal.
type RiskManagementReport struct {
	AccountSize     float64           `json:"account_size"`
	CurrentBalance  float64           `json:"current_balance"`
	TotalPnL        float64           `json:"total_pnl"`
	ROIPct          float64           `json:"roi_pct"`
	TotalTrades     int               `json:"total_trades"`
	WinRate         float64           `json:"win_rate"`
	Kelly           *KellyReport      `json:"kelly_criterion,omitempty"`
	Expectancy      *ExpectancyReport `json:"expectancy,omitempty"`
	RiskOfRuin      *RuinReport       `json:"risk_of_ruin,omitempty"`
	Recommendations []string          `json:"recommendations"`
}
