// Package alerts scans a trade snapshot against configurable thresholds
// and emits risk and behaviour warnings.
package alerts

import (
	"fmt"
	"math"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"go.uber.org/zap"
)

// Minimum sample sizes per check. Below these a check stays silent
// rather than erroring; an empty result is not a failure.
const (
	drawdownMinTrades = 5
	winRateMinTrades  = 20
	highRiskMinTrades = 5
	revengeMinTrades  = 10
	recentWindow      = 10
	highRiskWindow    = 5
	revengeDayTrades  = 4
)

// Alert type identifiers.
const (
	TypeMaxDrawdown       = "MAX_DRAWDOWN"
	TypeDailyLoss         = "DAILY_LOSS"
	TypeConsecutiveLosses = "CONSECUTIVE_LOSSES"
	TypeWinRateDrop       = "WINRATE_DROP"
	TypeOvertrading       = "OVERTRADING"
	TypeHighRisk          = "HIGH_RISK"
	TypeRevengeTrading    = "REVENGE_TRADING"
)

// Detector runs the alert checks. Checks never mutate trade data; the
// caller passes a snapshot plus the reference instant for "today".
type Detector struct {
	logger     *zap.Logger
	thresholds types.AlertThresholds
}

// NewDetector creates a detector. Unset threshold fields fall back to
// the documented defaults.
func NewDetector(logger *zap.Logger, thresholds types.AlertThresholds) *Detector {
	return &Detector{
		logger:     logger,
		thresholds: thresholds.Normalize(),
	}
}

// Thresholds returns the effective thresholds.
func (d *Detector) Thresholds() types.AlertThresholds {
	return d.thresholds
}

// CheckAll runs every check and collects the triggered alerts.
func (d *Detector) CheckAll(trades []*types.Trade, accountSize float64, now time.Time) []*types.Alert {
	checks := []*types.Alert{
		d.CheckMaxDrawdown(trades, accountSize, now),
		d.CheckDailyLoss(trades, now),
		d.CheckConsecutiveLosses(trades, now),
		d.CheckWinRateDrop(trades, now),
		d.CheckOvertrading(trades, now),
		d.CheckHighRisk(trades, accountSize, now),
		d.CheckRevengePattern(trades, now),
	}

	alerts := make([]*types.Alert, 0, len(checks))
	for _, a := range checks {
		if a != nil {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// CheckMaxDrawdown fires when the peak-to-trough decline of the
// cumulative pnl curve, measured against account size, exceeds the
// threshold. Needs at least 5 trades.
func (d *Detector) CheckMaxDrawdown(trades []*types.Trade, accountSize float64, now time.Time) *types.Alert {
	if len(trades) < drawdownMinTrades || accountSize <= 0 {
		return nil
	}

	ordered := sortedCopy(trades)
	var equity, peak, maxDD float64
	for _, t := range ordered {
		pnl, _ := t.PnL.Float64()
		equity += pnl
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDD {
			maxDD = dd
		}
	}

	maxDDPct := maxDD / accountSize * 100
	if maxDDPct <= d.thresholds.MaxDrawdownPct {
		return nil
	}

	return &types.Alert{
		Type:     TypeMaxDrawdown,
		Severity: types.SeverityCritical,
		Message: fmt.Sprintf("Maximum drawdown reached %.1f%% (%.2f)",
			maxDDPct, maxDD),
		Data: map[string]interface{}{
			"drawdown_pct":    maxDDPct,
			"drawdown_amount": maxDD,
			"threshold":       d.thresholds.MaxDrawdownPct,
		},
		Timestamp: now,
	}
}

// CheckDailyLoss fires CRITICAL when today's summed pnl breaches the
// loss limit, or WARNING when yesterday's did.
func (d *Detector) CheckDailyLoss(trades []*types.Trade, now time.Time) *types.Alert {
	if len(trades) == 0 {
		return nil
	}

	limit := d.thresholds.DailyLossLimit
	todayPnL, todayCount := dayTotals(trades, now)
	if todayCount > 0 && todayPnL < -limit {
		return &types.Alert{
			Type:     TypeDailyLoss,
			Severity: types.SeverityCritical,
			Message: fmt.Sprintf("Daily loss limit breached: %.2f lost today (limit %.2f)",
				-todayPnL, limit),
			Data: map[string]interface{}{
				"daily_loss":   -todayPnL,
				"threshold":    limit,
				"trades_today": todayCount,
			},
			Timestamp: now,
		}
	}

	yesterday := now.AddDate(0, 0, -1)
	yPnL, yCount := dayTotals(trades, yesterday)
	if yCount > 0 && yPnL < -limit {
		return &types.Alert{
			Type:     TypeDailyLoss,
			Severity: types.SeverityWarning,
			Message: fmt.Sprintf("High loss yesterday: %.2f. Consider taking a break today.",
				-yPnL),
			Data: map[string]interface{}{
				"daily_loss": -yPnL,
				"date":       yesterday.Format("2006-01-02"),
			},
			Timestamp: now,
		}
	}

	return nil
}

// CheckConsecutiveLosses fires on a run of strictly-negative trades in
// chronological order, whether the run was closed by a later win or is
// still open at the most recent trade. An open run carries active=true.
func (d *Detector) CheckConsecutiveLosses(trades []*types.Trade, now time.Time) *types.Alert {
	threshold := d.thresholds.ConsecutiveLosses
	if len(trades) < threshold {
		return nil
	}

	ordered := sortedCopy(trades)
	count := 0
	var totalLoss float64
	for _, t := range ordered {
		pnl, _ := t.PnL.Float64()
		if pnl < 0 {
			count++
			totalLoss += pnl
			continue
		}
		if count >= threshold {
			return d.consecutiveAlert(count, -totalLoss, false, now)
		}
		count = 0
		totalLoss = 0
	}

	if count >= threshold {
		return d.consecutiveAlert(count, -totalLoss, true, now)
	}
	return nil
}

func (d *Detector) consecutiveAlert(count int, totalLoss float64, active bool, now time.Time) *types.Alert {
	data := map[string]interface{}{
		"consecutive_count": count,
		"total_loss":        totalLoss,
		"threshold":         d.thresholds.ConsecutiveLosses,
	}
	msg := fmt.Sprintf("%d consecutive losses detected, total loss %.2f. Stop and review your strategy.",
		count, totalLoss)
	if active {
		data["active"] = true
		msg = fmt.Sprintf("Active losing streak: %d consecutive losses, total %.2f. Stop trading now.",
			count, totalLoss)
	}
	return &types.Alert{
		Type:      TypeConsecutiveLosses,
		Severity:  types.SeverityCritical,
		Message:   msg,
		Data:      data,
		Timestamp: now,
	}
}

// CheckWinRateDrop compares the overall win rate against the last 10
// trades. Needs at least 20 trades.
func (d *Detector) CheckWinRateDrop(trades []*types.Trade, now time.Time) *types.Alert {
	if len(trades) < winRateMinTrades {
		return nil
	}

	ordered := sortedCopy(trades)
	overall := winRatePct(ordered)
	recent := winRatePct(ordered[len(ordered)-recentWindow:])

	drop := overall - recent
	if drop <= d.thresholds.WinRateDropPct {
		return nil
	}

	return &types.Alert{
		Type:     TypeWinRateDrop,
		Severity: types.SeverityWarning,
		Message: fmt.Sprintf("Win rate dropping: recent %.1f%% vs overall %.1f%% (-%.1f)",
			recent, overall, drop),
		Data: map[string]interface{}{
			"overall_winrate": overall,
			"recent_winrate":  recent,
			"drop":            drop,
		},
		Timestamp: now,
	}
}

// CheckOvertrading fires when today's trade count reaches the daily limit.
func (d *Detector) CheckOvertrading(trades []*types.Trade, now time.Time) *types.Alert {
	if len(trades) == 0 {
		return nil
	}

	todayPnL, todayCount := dayTotals(trades, now)
	if todayCount < d.thresholds.DailyTradeLimit {
		return nil
	}

	return &types.Alert{
		Type:     TypeOvertrading,
		Severity: types.SeverityWarning,
		Message: fmt.Sprintf("Overtrading: %d trades today (limit %d), pnl %.2f",
			todayCount, d.thresholds.DailyTradeLimit, todayPnL),
		Data: map[string]interface{}{
			"trades_today": todayCount,
			"limit":        d.thresholds.DailyTradeLimit,
			"pnl":          todayPnL,
		},
		Timestamp: now,
	}
}

// CheckHighRisk fires when more than 2 of the most recent 5 trades moved
// more than the risk threshold as a percentage of account size.
func (d *Detector) CheckHighRisk(trades []*types.Trade, accountSize float64, now time.Time) *types.Alert {
	if len(trades) < highRiskMinTrades || accountSize <= 0 {
		return nil
	}

	ordered := sortedCopy(trades)
	recent := ordered[len(ordered)-highRiskWindow:]

	highCount := 0
	var riskSum float64
	for _, t := range recent {
		pnl, _ := t.PnL.Float64()
		riskPct := math.Abs(pnl) / accountSize * 100
		riskSum += riskPct
		if riskPct > d.thresholds.RiskPerTradePct {
			highCount++
		}
	}
	if highCount <= 2 {
		return nil
	}

	avgRisk := riskSum / float64(len(recent))
	return &types.Alert{
		Type:     TypeHighRisk,
		Severity: types.SeverityWarning,
		Message: fmt.Sprintf("High risk: %d recent trades exceed %.1f%% risk, average %.2f%%",
			highCount, d.thresholds.RiskPerTradePct, avgRisk),
		Data: map[string]interface{}{
			"high_risk_count": highCount,
			"avg_risk":        avgRisk,
			"threshold":       d.thresholds.RiskPerTradePct,
		},
		Timestamp: now,
	}
}

// CheckRevengePattern flags calendar days with at least 4 trades where
// the first was a loss and at least 2 of the rest were losses too.
// Needs at least 10 trades.
func (d *Detector) CheckRevengePattern(trades []*types.Trade, now time.Time) *types.Alert {
	if len(trades) < revengeMinTrades {
		return nil
	}

	ordered := sortedCopy(trades)
	revengeDays := 0
	for i := 0; i < len(ordered); {
		j := i
		for j < len(ordered) && sameDay(ordered[j].Date, ordered[i].Date) {
			j++
		}
		day := ordered[i:j]
		i = j

		if len(day) < revengeDayTrades {
			continue
		}
		first, _ := day[0].PnL.Float64()
		if first >= 0 {
			continue
		}
		losses := 0
		for _, t := range day[1:] {
			pnl, _ := t.PnL.Float64()
			if pnl < 0 {
				losses++
			}
		}
		if losses >= 2 {
			revengeDays++
		}
	}

	if revengeDays == 0 {
		return nil
	}

	return &types.Alert{
		Type:     TypeRevengeTrading,
		Severity: types.SeverityWarning,
		Message: fmt.Sprintf("Revenge trading pattern on %d day(s): a loss followed by a burst of losing trades",
			revengeDays),
		Data: map[string]interface{}{
			"days_detected": revengeDays,
		},
		Timestamp: now,
	}
}

func sortedCopy(trades []*types.Trade) []*types.Trade {
	ordered := make([]*types.Trade, len(trades))
	copy(ordered, trades)
	types.SortChronological(ordered)
	return ordered
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

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func dayTotals(trades []*types.Trade, day time.Time) (pnl float64, count int) {
	for _, t := range trades {
		if t == nil || !sameDay(t.Date, day) {
			continue
		}
		p, _ := t.PnL.Float64()
		pnl += p
		count++
	}
	return pnl, count
}
