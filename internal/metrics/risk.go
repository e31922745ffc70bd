package metrics

import (
	"fmt"
	"math"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
)

// RiskOfRuin approximates the probability of losing half the account as
// a run of full-risk consecutive losses. Inputs are percentages on a
// 0-100 scale; nil when any is non-positive.
func RiskOfRuin(accountSize, riskPerTradePct, winRatePct float64) *types.RuinReport {
	if accountSize <= 0 || riskPerTradePct <= 0 || winRatePct <= 0 {
		return nil
	}

	tradesToRuin := 50 / riskPerTradePct
	lossRate := 1 - winRatePct/100
	ruin := math.Pow(lossRate, tradesToRuin)

	return &types.RuinReport{
		RuinProbabilityPct: math.Round(ruin*100*10000) / 10000,
		TradesToHalfLoss:   math.Round(tradesToRuin),
		RiskPerTradePct:    riskPerTradePct,
		WinRatePct:         winRatePct,
	}
}

// PositionSize converts an account-percentage risk budget into a share
// count given entry and stop prices. Nil when an input is missing or the
// stop sits on the entry.
func PositionSize(accountSize, riskPct, entry, stop float64) *types.PositionSizeReport {
	if accountSize <= 0 || riskPct <= 0 || entry <= 0 || stop <= 0 {
		return nil
	}

	priceDiff := math.Abs(entry - stop)
	if priceDiff == 0 {
		return nil
	}

	riskAmount := accountSize * riskPct / 100
	shares := riskAmount / priceDiff
	positionValue := shares * entry

	return &types.PositionSizeReport{
		Shares:        round2(shares),
		PositionValue: round2(positionValue),
		RiskAmount:    round2(riskAmount),
		RiskPct:       riskPct,
		PriceDiff:     round2(priceDiff),
		Leverage:      round2(positionValue / accountSize),
	}
}

// RiskReward computes the reward-to-risk ratio for a planned trade.
// Nil when an input is missing or the risk distance is zero.
func RiskReward(entry, stop, takeProfit float64) *types.RiskRewardReport {
	if entry <= 0 || stop <= 0 || takeProfit <= 0 {
		return nil
	}

	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return nil
	}

	return &types.RiskRewardReport{
		Risk:      round2(risk),
		Reward:    round2(reward),
		Ratio:     round2(reward / risk),
		RiskPct:   round2(risk / entry * 100),
		RewardPct: round2(reward / entry * 100),
	}
}

// RequiredWinRate is the minimum win rate that breaks even at the given
// reward-to-risk ratio. Nil for a non-positive ratio.
func RequiredWinRate(rrRatio float64) *types.RequiredWinRateReport {
	if rrRatio <= 0 {
		return nil
	}
	required := 1 / (1 + rrRatio)
	return &types.RequiredWinRateReport{
		RequiredWinRatePct: round2(required * 100),
		RiskRewardRatio:    rrRatio,
	}
}

// ProfitTargets lays out exit levels at the given R-multiples. A nil or
// empty multiples slice uses 1R/2R/3R/5R.
func ProfitTargets(entry, riskAmount float64, rMultiples []float64) []types.ProfitTarget {
	if entry <= 0 || riskAmount <= 0 {
		return nil
	}
	if len(rMultiples) == 0 {
		rMultiples = []float64{1, 2, 3, 5}
	}

	targets := make([]types.ProfitTarget, 0, len(rMultiples))
	for _, r := range rMultiples {
		profit := riskAmount * r
		targets = append(targets, types.ProfitTarget{
			RMultiple:    r,
			ProfitAmount: round2(profit),
			TargetLong:   round2(entry + profit),
			TargetShort:  round2(entry - profit),
		})
	}
	return targets
}

// MaxRiskPerDay is the currency amount a daily risk budget allows.
func MaxRiskPerDay(accountSize, dailyRiskPct float64) float64 {
	return accountSize * dailyRiskPct / 100
}

// CurrentRiskExposure sums the absolute pnl of the given trades.
func CurrentRiskExposure(trades []*types.Trade) float64 {
	var total float64
	for _, t := range trades {
		if t == nil {
			continue
		}
		pnl, _ := t.PnL.Float64()
		total += math.Abs(pnl)
	}
	return total
}

// riskRecommendation is one (predicate, message) rule for the risk report.
type riskRecommendation struct {
	applies func(*types.RiskManagementReport) bool
	message func(*types.RiskManagementReport) string
}

// RiskReport assembles the full risk-management picture for one journal.
// Pass currentBalance <= 0 to derive it from account size plus total pnl.
// Nil when the journal is empty.
func (c *Calculator) RiskReport(trades []*types.Trade, accountSize, currentBalance float64) *types.RiskManagementReport {
	usable, _ := usableTrades(trades)
	if len(usable) == 0 {
		return nil
	}

	var totalPnL float64
	wins := 0
	for _, t := range usable {
		pnl, _ := t.PnL.Float64()
		totalPnL += pnl
		if pnl > 0 {
			wins++
		}
	}
	if currentBalance <= 0 {
		currentBalance = accountSize + totalPnL
	}

	winRate := float64(wins) / float64(len(usable)) * 100

	report := &types.RiskManagementReport{
		AccountSize:    accountSize,
		CurrentBalance: round2(currentBalance),
		TotalPnL:       round2(totalPnL),
		TotalTrades:    len(usable),
		WinRate:        round2(winRate),
		Kelly:          c.KellyCriterion(usable),
		Expectancy:     c.Expectancy(usable),
		RiskOfRuin:     RiskOfRuin(currentBalance, 1.0, winRate),
	}
	if accountSize > 0 {
		report.ROIPct = round2(totalPnL / accountSize * 100)
	}

	for _, rule := range riskRules {
		if rule.applies(report) {
			report.Recommendations = append(report.Recommendations, rule.message(report))
		}
	}
	return report
}

// riskRules drives the recommendation block of the risk report.
var riskRules = []riskRecommendation{
	{
		applies: func(r *types.RiskManagementReport) bool {
			return r.Kelly != nil && r.Kelly.HalfKellyPct > 0
		},
		message: func(r *types.RiskManagementReport) string {
			return fmt.Sprintf("Optimal risk per trade: %.1f%% (half Kelly)", r.Kelly.HalfKellyPct)
		},
	},
	{
		applies: func(r *types.RiskManagementReport) bool {
			return r.Expectancy != nil && r.Expectancy.Expectancy > 0
		},
		message: func(r *types.RiskManagementReport) string {
			return fmt.Sprintf("Positive expectancy: %.2f per trade", r.Expectancy.Expectancy)
		},
	},
	{
		applies: func(r *types.RiskManagementReport) bool {
			return r.Expectancy == nil || r.Expectancy.Expectancy <= 0
		},
		message: func(r *types.RiskManagementReport) string {
			return "Negative or unproven expectancy - review your strategy"
		},
	},
	{
		applies: func(r *types.RiskManagementReport) bool {
			return r.WinRate < 40
		},
		message: func(r *types.RiskManagementReport) string {
			return "Low win rate (<40%) - make sure your reward-to-risk ratio stays above 2:1"
		},
	},
	{
		applies: func(r *types.RiskManagementReport) bool {
			return r.RiskOfRuin != nil && r.RiskOfRuin.RuinProbabilityPct > 1
		},
		message: func(r *types.RiskManagementReport) string {
			return fmt.Sprintf("Risk of ruin at %.2f%% - lower your risk per trade", r.RiskOfRuin.RuinProbabilityPct)
		},
	},
}
