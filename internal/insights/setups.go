package insights

import (
	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
)

const (
	setupMinTrades       = 5
	symbolMinOccurrences = 3
)

// CategoryAnalysis names the best and worst bucket of one categorical
// dimension by average pnl.
type CategoryAnalysis struct {
	Best         string                `json:"best"`
	BestAvg      float64               `json:"best_avg"`
	BestWinRate  float64               `json:"best_winrate"`
	Worst        string                `json:"worst"`
	WorstAvg     float64               `json:"worst_avg"`
	WorstWinRate float64               `json:"worst_winrate"`
	Stats        map[string]GroupStats `json:"stats"`
}

// SetupSymbolReport breaks performance down by setup, symbol and market
// condition.
type SetupSymbolReport struct {
	Setups          *CategoryAnalysis     `json:"setup_analysis,omitempty"`
	Symbols         *CategoryAnalysis     `json:"symbol_analysis,omitempty"`
	MarketCondition map[string]GroupStats `json:"market_condition_analysis,omitempty"`
}

// AnalyzeSetupsSymbols groups performance by setup tag, symbol and
// market condition. Symbols need at least 3 trades to rank. Nil below
// 5 trades.
func AnalyzeSetupsSymbols(trades []*types.Trade) *SetupSymbolReport {
	var usable []*types.Trade
	for _, t := range trades {
		if t != nil {
			usable = append(usable, t)
		}
	}
	if len(usable) < setupMinTrades {
		return nil
	}

	report := &SetupSymbolReport{
		Setups: rankCategory(groupBy(usable, func(t *types.Trade) string { return t.Setup }), 0),
		Symbols: rankCategory(groupBy(usable, func(t *types.Trade) string { return t.Symbol }),
			symbolMinOccurrences),
		MarketCondition: groupBy(usable, func(t *types.Trade) string { return t.MarketCondition }),
	}
	if len(report.MarketCondition) == 0 {
		report.MarketCondition = nil
	}
	return report
}

func rankCategory(groups map[string]GroupStats, minCount int) *CategoryAnalysis {
	filtered := map[string]GroupStats{}
	for k, stats := range groups {
		if stats.Count >= minCount {
			filtered[k] = stats
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	analysis := &CategoryAnalysis{Stats: filtered}
	first := true
	for k, stats := range filtered {
		if first || stats.AvgPnL > analysis.BestAvg {
			analysis.Best, analysis.BestAvg, analysis.BestWinRate = k, stats.AvgPnL, stats.WinRate
		}
		if first || stats.AvgPnL < analysis.WorstAvg {
			analysis.Worst, analysis.WorstAvg, analysis.WorstWinRate = k, stats.AvgPnL, stats.WinRate
		}
		first = false
	}
	return analysis
}
