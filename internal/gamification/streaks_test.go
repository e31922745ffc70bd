package gamification

import (
	"testing"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"github.com/shopspring/decimal"
)

// 2024-03-08 is a Friday.
var friday = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

func tradeAt(id int64, day time.Time, clock string, pnl float64) *types.Trade {
	return &types.Trade{
		ID:        id,
		Symbol:    "EURUSD",
		Side:      types.SideLong,
		Quantity:  decimal.NewFromInt(1),
		PnL:       decimal.NewFromFloat(pnl),
		Date:      day,
		ClockTime: clock,
	}
}

func dailyTrades(start time.Time, pnls ...float64) []*types.Trade {
	trades := make([]*types.Trade, len(pnls))
	for i, pnl := range pnls {
		trades[i] = tradeAt(int64(i+1), start.AddDate(0, 0, i), "", pnl)
	}
	return trades
}

func TestMaxWinStreak(t *testing.T) {
	trades := dailyTrades(friday.AddDate(0, 0, -30), 10, 20, -5, 30, 40, 50, -1, 5)
	if got := MaxWinStreak(trades); got != 3 {
		t.Errorf("max win streak = %d, want 3", got)
	}
	if got := MaxWinStreak(nil); got != 0 {
		t.Errorf("max win streak of empty = %d, want 0", got)
	}
}

func TestMaxWinStreakIgnoresInputOrder(t *testing.T) {
	base := friday.AddDate(0, 0, -30)
	trades := []*types.Trade{
		tradeAt(3, base.AddDate(0, 0, 2), "", 10),
		tradeAt(1, base, "", 10),
		tradeAt(2, base.AddDate(0, 0, 1), "", -5),
	}
	// Chronological order is win, loss, win.
	if got := MaxWinStreak(trades); got != 1 {
		t.Errorf("max win streak = %d, want 1", got)
	}
}

func TestCurrentStreaks(t *testing.T) {
	trades := dailyTrades(friday.AddDate(0, 0, -30), 10, -5, -3, -2)
	report := CurrentStreaks(trades)
	if report.CurrentLossStreak != 3 {
		t.Errorf("current loss streak = %d, want 3", report.CurrentLossStreak)
	}
	if report.CurrentWinStreak != 0 {
		t.Errorf("current win streak = %d, want 0", report.CurrentWinStreak)
	}
	if report.MaxWinStreak != 1 {
		t.Errorf("max win streak = %d, want 1", report.MaxWinStreak)
	}
	if report.TotalTrades != 4 {
		t.Errorf("total trades = %d, want 4", report.TotalTrades)
	}
}

func TestCurrentStreaksBreakEvenStops(t *testing.T) {
	trades := dailyTrades(friday.AddDate(0, 0, -30), 10, 0, 20, 30)
	report := CurrentStreaks(trades)
	if report.CurrentWinStreak != 2 {
		t.Errorf("current win streak = %d, want 2", report.CurrentWinStreak)
	}
}

func TestTradingDaysStreakWeekendGap(t *testing.T) {
	// Thursday, Friday, then Monday: the weekend gap keeps the run alive.
	trades := []*types.Trade{
		tradeAt(1, friday.AddDate(0, 0, -1), "", 10),
		tradeAt(2, friday, "", 10),
		tradeAt(3, friday.AddDate(0, 0, 3), "", 10),
	}
	if got := TradingDaysStreak(trades); got != 3 {
		t.Errorf("streak across weekend = %d, want 3", got)
	}
}

func TestTradingDaysStreakMidweekGapBreaks(t *testing.T) {
	// Monday then Thursday: same 3-day gap but no weekend before it.
	monday := friday.AddDate(0, 0, 3)
	trades := []*types.Trade{
		tradeAt(1, monday, "", 10),
		tradeAt(2, monday.AddDate(0, 0, 3), "", 10),
	}
	if got := TradingDaysStreak(trades); got != 1 {
		t.Errorf("streak across midweek gap = %d, want 1", got)
	}
}

func TestTradingDaysStreakDeduplicatesDays(t *testing.T) {
	trades := []*types.Trade{
		tradeAt(1, friday, "09:00", 10),
		tradeAt(2, friday, "11:00", -5),
		tradeAt(3, friday.AddDate(0, 0, -1), "", 10),
	}
	if got := TradingDaysStreak(trades); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
}

func TestTradingDaysStreakSpansDSTTransition(t *testing.T) {
	// Midnights 23 hours apart, as on a spring-forward day. The pair is
	// still one calendar day apart and must extend the streak.
	winter := time.FixedZone("EST", -5*3600)
	summer := time.FixedZone("EDT", -4*3600)
	trades := []*types.Trade{
		tradeAt(1, time.Date(2024, 3, 6, 0, 0, 0, 0, winter), "", 10),
		tradeAt(2, time.Date(2024, 3, 7, 0, 0, 0, 0, summer), "", 10),
	}
	if got := TradingDaysStreak(trades); got != 2 {
		t.Errorf("streak across DST boundary = %d, want 2", got)
	}
}

func TestHasComeback(t *testing.T) {
	// Three losses of 30 total, then wins summing past the drawdown.
	trades := dailyTrades(friday.AddDate(0, 0, -30), -10, -10, -10, 20, 15)
	if !HasComeback(trades) {
		t.Error("expected a comeback")
	}

	// Recovery equal to the drawdown is not enough.
	weak := dailyTrades(friday.AddDate(0, 0, -30), -10, -10, -10, 20, 10)
	if HasComeback(weak) {
		t.Error("recovery equal to drawdown must not count")
	}

	if HasComeback(dailyTrades(friday, -10, -10, -10)) {
		t.Error("no trades after the streak, no comeback")
	}
}

func TestNoRevengeTrading(t *testing.T) {
	day := friday
	disciplined := []*types.Trade{
		tradeAt(1, day, "09:00", -50),
		tradeAt(2, day, "10:30", 20),
	}
	if !NoRevengeTrading(disciplined) {
		t.Error("90 minutes after a loss is fine")
	}

	revenge := []*types.Trade{
		tradeAt(1, day, "09:00", -50),
		tradeAt(2, day, "09:30", 20),
	}
	if NoRevengeTrading(revenge) {
		t.Error("30 minutes after a loss must fail the check")
	}

	// Wins never start the clock.
	winsOnly := []*types.Trade{
		tradeAt(1, day, "09:00", 50),
		tradeAt(2, day, "09:05", 20),
	}
	if !NoRevengeTrading(winsOnly) {
		t.Error("rapid trades after a win are allowed")
	}

	if !NoRevengeTrading(nil) {
		t.Error("empty history is disciplined by definition")
	}
}

func TestNoRevengeTradingNoonDefault(t *testing.T) {
	// Untimed same-day trades both land on noon: zero gap, check fails.
	trades := []*types.Trade{
		tradeAt(1, friday, "", -50),
		tradeAt(2, friday, "", 20),
	}
	if NoRevengeTrading(trades) {
		t.Error("untimed same-day trades collapse onto noon and must fail")
	}
}

func TestCountEarlyTrades(t *testing.T) {
	trades := []*types.Trade{
		tradeAt(1, friday, "08:30", 10),
		tradeAt(2, friday, "08:59", -5),
		tradeAt(3, friday, "09:00", 10),
		tradeAt(4, friday, "", 10),
		tradeAt(5, friday, "bogus", 10),
	}
	if got := CountEarlyTrades(trades); got != 2 {
		t.Errorf("early trades = %d, want 2", got)
	}
}

func TestHasProfitableWeek(t *testing.T) {
	// now is a Wednesday; the previous week ran Mon 2024-02-26 through
	// Sun 2024-03-03.
	now := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)
	inWeek := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)

	if !HasProfitableWeek([]*types.Trade{tradeAt(1, inWeek, "", 100)}, now) {
		t.Error("expected a profitable week")
	}
	if HasProfitableWeek([]*types.Trade{tradeAt(1, inWeek, "", -100)}, now) {
		t.Error("losing week must not count")
	}

	thisWeek := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	if HasProfitableWeek([]*types.Trade{tradeAt(1, thisWeek, "", 100)}, now) {
		t.Error("current week trades are out of scope")
	}
}

func TestHasProfitableMonth(t *testing.T) {
	now := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	if !HasProfitableMonth([]*types.Trade{tradeAt(1, feb, "", 50)}, now) {
		t.Error("expected a profitable month")
	}
	if HasProfitableMonth([]*types.Trade{tradeAt(1, now, "", 50)}, now) {
		t.Error("current month is out of scope")
	}

	// January rolls back into the previous year's December.
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	if !HasProfitableMonth([]*types.Trade{tradeAt(1, dec, "", 50)}, jan) {
		t.Error("expected December to count from January")
	}
}

func TestFollowsRiskManagement(t *testing.T) {
	var trades []*types.Trade
	for i := 0; i < 30; i++ {
		trades = append(trades, tradeAt(int64(i+1), friday.AddDate(0, 0, -i), "", -100))
	}
	if !FollowsRiskManagement(trades, 0) {
		t.Error("losses at 1% of the nominal account are within limits")
	}

	trades[0] = tradeAt(1, friday, "", -500)
	if FollowsRiskManagement(trades, 0) {
		t.Error("a 5% loss breaks the discipline check")
	}

	if FollowsRiskManagement(trades[:10], 0) {
		t.Error("below 30 trades the check is not earned")
	}
}

func TestSummary(t *testing.T) {
	trades := []*types.Trade{
		tradeAt(1, friday, "", 100),
		tradeAt(2, friday, "", -40),
		tradeAt(3, friday, "", 60),
	}
	trades[1].Symbol = "GBPUSD"

	s := Summary(trades)
	if s.TotalTrades != 3 || s.UniqueSymbols != 2 {
		t.Errorf("totals = %d trades / %d symbols, want 3/2", s.TotalTrades, s.UniqueSymbols)
	}
	if s.TotalPnL != 120 {
		t.Errorf("total pnl = %v, want 120", s.TotalPnL)
	}
	if s.BestTrade != 100 || s.WorstTrade != -40 {
		t.Errorf("best/worst = %v/%v, want 100/-40", s.BestTrade, s.WorstTrade)
	}

	empty := Summary(nil)
	if empty.TotalTrades != 0 || empty.BestTrade != 0 {
		t.Errorf("empty summary = %+v, want zeros", empty)
	}
}
