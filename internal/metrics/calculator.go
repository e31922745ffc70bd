// Package metrics computes performance statistics over journal trades.
package metrics

import (
	"math"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	kellyMinTrades      = 20
	expectancyMinTrades = 10
	tradingDaysPerYear  = 252
)

// Calculator derives performance reports from a trade snapshot. It holds
// no state between calls; every report is a fresh fold over the input.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new metrics calculator.
func NewCalculator(logger *zap.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// CalculatePnL derives the signed profit of a closed position.
// Long: (exit-entry)*qty. Short: (entry-exit)*qty.
func CalculatePnL(entry, exit, quantity decimal.Decimal, side types.Side) decimal.Decimal {
	if side == types.SideShort {
		return entry.Sub(exit).Mul(quantity)
	}
	return exit.Sub(entry).Mul(quantity)
}

// CalculateRMultiple expresses pnl in units of 1% of account size.
// Returns 0 for a non-positive account size.
func CalculateRMultiple(pnl decimal.Decimal, accountSize float64) float64 {
	if accountSize <= 0 {
		return 0
	}
	p, _ := pnl.Float64()
	return p / (accountSize * 0.01)
}

// Calculate aggregates performance statistics over the whole trade set.
// Malformed rows are skipped and counted rather than failing the report.
func (c *Calculator) Calculate(trades []*types.Trade) *types.PerformanceReport {
	report := &types.PerformanceReport{}

	usable, skipped := usableTrades(trades)
	report.SkippedTrades = skipped
	if skipped > 0 && c.logger != nil {
		c.logger.Debug("Skipped malformed trades", zap.Int("count", skipped))
	}
	if len(usable) == 0 {
		return report
	}

	types.SortChronological(usable)

	pnls := make([]float64, len(usable))
	var grossProfit, grossLoss float64
	for i, t := range usable {
		pnl, _ := t.PnL.Float64()
		pnls[i] = pnl
		report.TotalProfit += pnl

		switch {
		case pnl > 0:
			report.WinningTrades++
			grossProfit += pnl
			if pnl > report.LargestWin {
				report.LargestWin = pnl
			}
		case pnl < 0:
			report.LosingTrades++
			grossLoss += -pnl
			if -pnl > report.LargestLoss {
				report.LargestLoss = -pnl
			}
		}
	}

	report.TotalTrades = len(usable)
	report.WinRate = float64(report.WinningTrades) / float64(report.TotalTrades) * 100

	if report.WinningTrades > 0 {
		report.AvgWin = grossProfit / float64(report.WinningTrades)
	}
	if report.LosingTrades > 0 {
		report.AvgLoss = grossLoss / float64(report.LosingTrades)
	}

	// Zero gross loss leaves the factor at 0 rather than infinity.
	if grossLoss > 0 {
		report.ProfitFactor = grossProfit / grossLoss
	}

	// Sharpe over per-trade pnl, annualized by sqrt(252).
	if len(pnls) > 1 {
		sd := stdDev(pnls)
		if sd > 0 {
			report.SharpeRatio = mean(pnls) / sd * math.Sqrt(tradingDaysPerYear)
		}
	}

	report.MaxDrawdown, report.MaxDrawdownPct = maxDrawdown(pnls)

	winFrac := report.WinRate / 100
	report.Expectancy = winFrac*report.AvgWin - (1-winFrac)*report.AvgLoss

	round2Report(report)
	return report
}

// KellyCriterion computes the Kelly optimal risk fraction. Returns nil
// below 20 trades, or when the history lacks a win or a loss.
func (c *Calculator) KellyCriterion(trades []*types.Trade) *types.KellyReport {
	usable, _ := usableTrades(trades)
	if len(usable) < kellyMinTrades {
		return nil
	}

	wins, losses := splitPnLs(usable)
	if len(wins) == 0 || len(losses) == 0 {
		return nil
	}

	winRate := float64(len(wins)) / float64(len(usable))
	avgWin := mean(wins)
	avgLoss := mean(losses)
	if avgLoss == 0 {
		return nil
	}

	ratio := avgWin / avgLoss
	kelly := winRate - (1-winRate)/ratio
	if kelly < 0 {
		kelly = 0
	}

	return &types.KellyReport{
		KellyPct:       round2(kelly * 100),
		HalfKellyPct:   round2(kelly / 2 * 100),
		WinRate:        round2(winRate * 100),
		AvgWin:         round2(avgWin),
		AvgLoss:        round2(avgLoss),
		WinLossRatio:   round2(ratio),
		TradesAnalyzed: len(usable),
	}
}

// Expectancy reports expected PnL per trade. Returns nil below 10 trades,
// or when the history lacks a win or a loss.
func (c *Calculator) Expectancy(trades []*types.Trade) *types.ExpectancyReport {
	usable, _ := usableTrades(trades)
	if len(usable) < expectancyMinTrades {
		return nil
	}

	wins, losses := splitPnLs(usable)
	if len(wins) == 0 || len(losses) == 0 {
		return nil
	}

	winPct := float64(len(wins)) / float64(len(usable))
	lossPct := float64(len(losses)) / float64(len(usable))
	avgWin := mean(wins)
	avgLoss := mean(losses)

	return &types.ExpectancyReport{
		Expectancy:     round2(winPct*avgWin - lossPct*avgLoss),
		WinPct:         round2(winPct * 100),
		LossPct:        round2(lossPct * 100),
		AvgWin:         round2(avgWin),
		AvgLoss:        round2(avgLoss),
		TradesAnalyzed: len(usable),
	}
}

// usableTrades filters out rows the aggregates cannot use: nil entries
// and negative quantities. One bad record must not sink the report.
func usableTrades(trades []*types.Trade) ([]*types.Trade, int) {
	usable := make([]*types.Trade, 0, len(trades))
	skipped := 0
	for _, t := range trades {
		if t == nil || t.Quantity.Sign() < 0 {
			skipped++
			continue
		}
		usable = append(usable, t)
	}
	return usable, skipped
}

// splitPnLs returns winning pnls and absolute losing pnls.
func splitPnLs(trades []*types.Trade) (wins, losses []float64) {
	for _, t := range trades {
		pnl, _ := t.PnL.Float64()
		if pnl > 0 {
			wins = append(wins, pnl)
		} else if pnl < 0 {
			losses = append(losses, -pnl)
		}
	}
	return wins, losses
}

// maxDrawdown walks the cumulative-pnl equity curve tracking the running
// peak. The percentage uses the highest peak as denominator; a peak that
// never rises above zero yields 0.
func maxDrawdown(pnls []float64) (maxDD, maxDDPct float64) {
	var equity, peak, bestPeak float64
	for _, pnl := range pnls {
		equity += pnl
		if equity > peak {
			peak = equity
		}
		if peak > bestPeak {
			bestPeak = peak
		}
		if dd := peak - equity; dd > maxDD {
			maxDD = dd
		}
	}
	if bestPeak > 0 {
		maxDDPct = maxDD / bestPeak * 100
	}
	return maxDD, maxDDPct
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

// stdDev is the sample standard deviation; 0 below two samples.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Report(r *types.PerformanceReport) {
	r.TotalProfit = round2(r.TotalProfit)
	r.WinRate = round2(r.WinRate)
	r.AvgWin = round2(r.AvgWin)
	r.AvgLoss = round2(r.AvgLoss)
	r.ProfitFactor = round2(r.ProfitFactor)
	r.SharpeRatio = round2(r.SharpeRatio)
	r.MaxDrawdown = round2(r.MaxDrawdown)
	r.MaxDrawdownPct = round2(r.MaxDrawdownPct)
	r.Expectancy = round2(r.Expectancy)
	r.LargestWin = round2(r.LargestWin)
	r.LargestLoss = round2(r.LargestLoss)
}
