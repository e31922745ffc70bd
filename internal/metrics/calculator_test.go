package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var testDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func tradeWithPnL(id int64, pnl float64) *types.Trade {
	return &types.Trade{
		ID:       id,
		Symbol:   "AAPL",
		Side:     types.SideLong,
		Quantity: decimal.NewFromInt(1),
		PnL:      decimal.NewFromFloat(pnl),
		Date:     testDay.AddDate(0, 0, int(id)),
	}
}

func tradesFromPnLs(pnls ...float64) []*types.Trade {
	trades := make([]*types.Trade, len(pnls))
	for i, pnl := range pnls {
		trades[i] = tradeWithPnL(int64(i+1), pnl)
	}
	return trades
}

func TestCalculatePnL(t *testing.T) {
	entry := decimal.NewFromInt(100)
	exit := decimal.NewFromInt(110)
	qty := decimal.NewFromInt(5)

	long := CalculatePnL(entry, exit, qty, types.SideLong)
	if !long.Equal(decimal.NewFromInt(50)) {
		t.Errorf("long pnl = %s, want 50", long)
	}

	short := CalculatePnL(entry, exit, qty, types.SideShort)
	if !short.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("short pnl = %s, want -50", short)
	}

	// Same prices with the opposite side must negate exactly.
	if !long.Add(short).IsZero() {
		t.Errorf("long + short = %s, want 0", long.Add(short))
	}
}

func TestCalculateRMultiple(t *testing.T) {
	r := CalculateRMultiple(decimal.NewFromInt(200), 10000)
	if r != 2 {
		t.Errorf("r-multiple = %v, want 2", r)
	}
	if got := CalculateRMultiple(decimal.NewFromInt(200), 0); got != 0 {
		t.Errorf("r-multiple with zero account = %v, want 0", got)
	}
}

func TestCalculateEmpty(t *testing.T) {
	c := NewCalculator(zap.NewNop())

	report := c.Calculate(nil)
	if report == nil {
		t.Fatal("expected a zero report, got nil")
	}
	if report.TotalTrades != 0 || report.TotalProfit != 0 || report.WinRate != 0 ||
		report.ProfitFactor != 0 || report.SharpeRatio != 0 || report.MaxDrawdown != 0 {
		t.Errorf("empty input must yield an all-zero report, got %+v", report)
	}
}

func TestCalculateBasics(t *testing.T) {
	c := NewCalculator(zap.NewNop())
	report := c.Calculate(tradesFromPnLs(100, -50, 200, -120, 30))

	if report.TotalTrades != 5 {
		t.Errorf("total trades = %d, want 5", report.TotalTrades)
	}
	if report.WinningTrades != 3 || report.LosingTrades != 2 {
		t.Errorf("wins/losses = %d/%d, want 3/2", report.WinningTrades, report.LosingTrades)
	}
	if report.TotalProfit != 160 {
		t.Errorf("total profit = %v, want 160", report.TotalProfit)
	}
	if report.WinRate != 60 {
		t.Errorf("win rate = %v, want 60", report.WinRate)
	}
	if report.AvgWin != 110 {
		t.Errorf("avg win = %v, want 110", report.AvgWin)
	}
	if report.AvgLoss != 85 {
		t.Errorf("avg loss = %v, want 85", report.AvgLoss)
	}
	if want := round2(330.0 / 170.0); report.ProfitFactor != want {
		t.Errorf("profit factor = %v, want %v", report.ProfitFactor, want)
	}
	if report.LargestWin != 200 || report.LargestLoss != 120 {
		t.Errorf("largest win/loss = %v/%v, want 200/120", report.LargestWin, report.LargestLoss)
	}

	// Equity walks 100, 50, 250, 130, 160: deepest dip is 120 off a 250 peak.
	if report.MaxDrawdown != 120 {
		t.Errorf("max drawdown = %v, want 120", report.MaxDrawdown)
	}
	if report.MaxDrawdownPct != 48 {
		t.Errorf("max drawdown pct = %v, want 48", report.MaxDrawdownPct)
	}
}

func TestCalculateProfitFactorNoLosses(t *testing.T) {
	c := NewCalculator(zap.NewNop())
	report := c.Calculate(tradesFromPnLs(10, 20, 30))

	if report.ProfitFactor != 0 {
		t.Errorf("profit factor with zero gross loss = %v, want 0", report.ProfitFactor)
	}
	if report.WinRate != 100 {
		t.Errorf("win rate = %v, want 100", report.WinRate)
	}
}

func TestCalculateSkipsMalformed(t *testing.T) {
	c := NewCalculator(zap.NewNop())
	trades := tradesFromPnLs(100, -50)
	trades = append(trades, nil)
	bad := tradeWithPnL(9, 10)
	bad.Quantity = decimal.NewFromInt(-1)
	trades = append(trades, bad)

	report := c.Calculate(trades)
	if report.TotalTrades != 2 {
		t.Errorf("total trades = %d, want 2", report.TotalTrades)
	}
	if report.SkippedTrades != 2 {
		t.Errorf("skipped trades = %d, want 2", report.SkippedTrades)
	}
}

func TestCalculateKeepsZeroQuantityRows(t *testing.T) {
	// PnL-only records legitimately carry no quantity.
	c := NewCalculator(zap.NewNop())
	trades := tradesFromPnLs(100, -50)
	pnlOnly := tradeWithPnL(3, 25)
	pnlOnly.Quantity = decimal.Zero
	trades = append(trades, pnlOnly)

	report := c.Calculate(trades)
	if report.TotalTrades != 3 {
		t.Errorf("total trades = %d, want 3", report.TotalTrades)
	}
	if report.SkippedTrades != 0 {
		t.Errorf("skipped trades = %d, want 0", report.SkippedTrades)
	}
}

func TestCalculateSharpe(t *testing.T) {
	c := NewCalculator(zap.NewNop())
	report := c.Calculate(tradesFromPnLs(100, -50, 200, -120, 30))

	pnls := []float64{100, -50, 200, -120, 30}
	want := round2(mean(pnls) / stdDev(pnls) * math.Sqrt(252))
	if report.SharpeRatio != want {
		t.Errorf("sharpe = %v, want %v", report.SharpeRatio, want)
	}

	// Identical pnls have zero variance; sharpe stays 0.
	flat := c.Calculate(tradesFromPnLs(10, 10, 10))
	if flat.SharpeRatio != 0 {
		t.Errorf("sharpe with zero stddev = %v, want 0", flat.SharpeRatio)
	}
}

func TestMaxDrawdownMonotone(t *testing.T) {
	// Appending a losing trade never shrinks max drawdown.
	pnls := []float64{100, -50, 200, -120, 30}
	before, _ := maxDrawdown(pnls)
	after, _ := maxDrawdown(append(pnls, -40))
	if after < before {
		t.Errorf("drawdown shrank after a loss: %v -> %v", before, after)
	}
}

func TestMaxDrawdownAllLosses(t *testing.T) {
	dd, ddPct := maxDrawdown([]float64{-10, -20, -30})
	if dd != 60 {
		t.Errorf("max drawdown = %v, want 60", dd)
	}
	// The peak never rises above zero so the percentage is undefined.
	if ddPct != 0 {
		t.Errorf("max drawdown pct = %v, want 0", ddPct)
	}
}

func TestKellyCriterion(t *testing.T) {
	c := NewCalculator(zap.NewNop())

	var trades []*types.Trade
	for i := 0; i < 15; i++ {
		trades = append(trades, tradeWithPnL(int64(i+1), 100))
	}
	for i := 0; i < 10; i++ {
		trades = append(trades, tradeWithPnL(int64(i+16), -80))
	}

	report := c.KellyCriterion(trades)
	if report == nil {
		t.Fatal("expected a kelly report for 25 trades")
	}
	// wr 0.6, ratio 1.25: kelly = 0.6 - 0.4/1.25 = 0.28.
	if report.KellyPct != 28 {
		t.Errorf("kelly pct = %v, want 28", report.KellyPct)
	}
	if report.HalfKellyPct != 14 {
		t.Errorf("half kelly pct = %v, want 14", report.HalfKellyPct)
	}
	if report.WinLossRatio != 1.25 {
		t.Errorf("win/loss ratio = %v, want 1.25", report.WinLossRatio)
	}
	if report.TradesAnalyzed != 25 {
		t.Errorf("trades analyzed = %d, want 25", report.TradesAnalyzed)
	}
}

func TestKellyInsufficientData(t *testing.T) {
	c := NewCalculator(zap.NewNop())

	if got := c.KellyCriterion(tradesFromPnLs(10, -5, 20)); got != nil {
		t.Errorf("kelly below 20 trades = %+v, want nil", got)
	}

	// 20+ trades but no losses still yields nil.
	var wins []*types.Trade
	for i := 0; i < 25; i++ {
		wins = append(wins, tradeWithPnL(int64(i+1), 50))
	}
	if got := c.KellyCriterion(wins); got != nil {
		t.Errorf("kelly without losses = %+v, want nil", got)
	}
}

func TestKellyNegativeClampsToZero(t *testing.T) {
	c := NewCalculator(zap.NewNop())

	// 5 small wins against 15 big losses drives raw kelly negative.
	var trades []*types.Trade
	for i := 0; i < 5; i++ {
		trades = append(trades, tradeWithPnL(int64(i+1), 10))
	}
	for i := 0; i < 15; i++ {
		trades = append(trades, tradeWithPnL(int64(i+6), -100))
	}

	report := c.KellyCriterion(trades)
	if report == nil {
		t.Fatal("expected a kelly report")
	}
	if report.KellyPct != 0 || report.HalfKellyPct != 0 {
		t.Errorf("negative kelly must clamp to 0, got %v/%v", report.KellyPct, report.HalfKellyPct)
	}
}

func TestExpectancy(t *testing.T) {
	c := NewCalculator(zap.NewNop())

	var trades []*types.Trade
	for i := 0; i < 6; i++ {
		trades = append(trades, tradeWithPnL(int64(i+1), 100))
	}
	for i := 0; i < 4; i++ {
		trades = append(trades, tradeWithPnL(int64(i+7), -50))
	}

	report := c.Expectancy(trades)
	if report == nil {
		t.Fatal("expected an expectancy report for 10 trades")
	}
	// 0.6*100 - 0.4*50 = 40.
	if report.Expectancy != 40 {
		t.Errorf("expectancy = %v, want 40", report.Expectancy)
	}
	if report.WinPct != 60 || report.LossPct != 40 {
		t.Errorf("win/loss pct = %v/%v, want 60/40", report.WinPct, report.LossPct)
	}
}

func TestExpectancyInsufficientData(t *testing.T) {
	c := NewCalculator(zap.NewNop())
	if got := c.Expectancy(tradesFromPnLs(10, -5)); got != nil {
		t.Errorf("expectancy below 10 trades = %+v, want nil", got)
	}
}

func TestCalculateOrdersByTimestamp(t *testing.T) {
	c := NewCalculator(zap.NewNop())

	// Input arrives newest-first; drawdown must still see the
	// chronological equity curve.
	trades := []*types.Trade{
		tradeWithPnL(3, 30),
		tradeWithPnL(2, -120),
		tradeWithPnL(1, 300),
	}
	report := c.Calculate(trades)
	if report.MaxDrawdown != 120 {
		t.Errorf("max drawdown on unsorted input = %v, want 120", report.MaxDrawdown)
	}
}
