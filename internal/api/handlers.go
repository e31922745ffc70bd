package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/a2o90/trading-journal-pro-sub000/internal/alerts"
	"github.com/a2o90/trading-journal-pro-sub000/internal/gamification"
	"github.com/a2o90/trading-journal-pro-sub000/internal/journal"
	"github.com/a2o90/trading-journal-pro-sub000/internal/metrics"
	"github.com/a2o90/trading-journal-pro-sub000/internal/telemetry"
	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func journalVars(r *http.Request) (user, account string) {
	vars := mux.Vars(r)
	return vars["user"], vars["account"]
}

func tradeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// accountSize honors a positive account_size query override, falling
// back to the configured size.
func (s *Server) accountSize(r *http.Request) float64 {
	if v := r.URL.Query().Get("account_size"); v != "" {
		if size, err := strconv.ParseFloat(v, 64); err == nil && size > 0 {
			return size
		}
	}
	return s.store.AccountSize()
}

// detectorFor returns the alert detector for a request. Any recognized
// threshold key in the query builds a one-off detector with that subset
// overridden.
func (s *Server) detectorFor(r *http.Request) *alerts.Detector {
	q := r.URL.Query()
	t := s.config.Alerts
	changed := false

	floatKeys := []struct {
		key string
		dst *float64
	}{
		{"max_drawdown_pct", &t.MaxDrawdownPct},
		{"daily_loss_limit", &t.DailyLossLimit},
		{"winrate_drop_pct", &t.WinRateDropPct},
		{"risk_per_trade_pct", &t.RiskPerTradePct},
	}
	for _, fk := range floatKeys {
		if v, err := strconv.ParseFloat(q.Get(fk.key), 64); err == nil && v > 0 {
			*fk.dst = v
			changed = true
		}
	}
	intKeys := []struct {
		key string
		dst *int
	}{
		{"consecutive_losses", &t.ConsecutiveLosses},
		{"daily_trade_limit", &t.DailyTradeLimit},
	}
	for _, ik := range intKeys {
		if v, err := strconv.Atoi(q.Get(ik.key)); err == nil && v > 0 {
			*ik.dst = v
			changed = true
		}
	}

	if !changed {
		return s.detector
	}
	return alerts.NewDetector(s.logger, t)
}

// handleAddTrade logs a trade, broadcasts it, and runs the alert checks
// on the updated journal so fresh warnings ride along in the response.
func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	var trade types.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if trade.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if trade.Side != types.SideLong && trade.Side != types.SideShort {
		s.writeError(w, http.StatusBadRequest, "side must be Long or Short")
		return
	}

	added, err := s.store.Add(user, account, &trade)
	if err != nil {
		s.logger.Error("Failed to add trade", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store trade")
		return
	}
	telemetry.TradesLogged.WithLabelValues(user).Inc()
	s.hub.BroadcastTrade(user, account, added)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}
	fired := s.detectorFor(r).CheckAll(trades, s.accountSize(r), s.now())
	for _, a := range fired {
		telemetry.AlertsFired.WithLabelValues(a.Type, string(a.Severity)).Inc()
	}
	if len(fired) > 0 {
		s.hub.BroadcastAlerts(user, account, fired)
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"trade":  added,
		"alerts": fired,
	})
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
	})
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)
	id, err := tradeID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	trade, err := s.store.Get(user, account, id)
	if errors.Is(err, journal.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load trade")
		return
	}
	s.writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)
	id, err := tradeID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	var trade types.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.store.Update(user, account, id, &trade)
	if errors.Is(err, journal.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to update trade")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)
	id, err := tradeID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	err = s.store.Delete(user, account, id)
	if errors.Is(err, journal.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to delete trade")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

func (s *Server) handleWipeJournal(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	if err := s.store.Wipe(user, account); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to wipe journal")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "wiped"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	report := s.calculator.Calculate(trades)
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleKelly(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	report := s.calculator.KellyCriterion(trades)
	if report == nil {
		s.writeError(w, http.StatusNotFound, "at least 20 trades with both wins and losses required")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExpectancy(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	report := s.calculator.Expectancy(trades)
	if report == nil {
		s.writeError(w, http.StatusNotFound, "at least 10 trades with both wins and losses required")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRiskReport(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	report := s.calculator.RiskReport(trades, s.accountSize(r), 0)
	if report == nil {
		s.writeError(w, http.StatusNotFound, "no trades in journal")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	fired := s.detectorFor(r).CheckAll(trades, s.accountSize(r), s.now())
	for _, a := range fired {
		telemetry.AlertsFired.WithLabelValues(a.Type, string(a.Severity)).Inc()
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": fired,
		"count":  len(fired),
	})
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"streaks": gamification.CurrentStreaks(trades),
		"stats":   gamification.Summary(trades),
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	unlockedIDs, totalXP, newUnlocks, err := s.refreshAchievements(user, account, trades)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load achievements")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": unlockedIDs,
		"new_unlocks":  newUnlocks,
		"level":        gamification.CalculateLevel(totalXP),
	})
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"challenges": gamification.EvaluateChallenges(s.weekTrades(trades)),
	})
}

// refreshAchievements checks the journal against the achievement table,
// persists anything newly unlocked, and returns the updated state.
func (s *Server) refreshAchievements(user, account string, trades []*types.Trade) ([]string, int, []gamification.Achievement, error) {
	unlockedIDs, totalXP, err := s.store.Achievements(user, account)
	if err != nil {
		return nil, 0, nil, err
	}

	_, newUnlocks := gamification.CheckAchievements(trades, unlockedIDs, s.now())
	if len(newUnlocks) > 0 {
		ids := make([]string, len(newUnlocks))
		xp := 0
		for i, a := range newUnlocks {
			ids[i] = a.ID
			xp += a.XP
		}
		if err := s.store.RecordUnlocks(user, account, ids, xp); err != nil {
			s.logger.Error("Failed to record achievements", zap.Error(err))
		} else {
			unlockedIDs = append(unlockedIDs, ids...)
			totalXP += xp
		}
	}
	return unlockedIDs, totalXP, newUnlocks, nil
}

// weekTrades returns the trades dated within the last seven days.
func (s *Server) weekTrades(trades []*types.Trade) []*types.Trade {
	weekStart := s.now().AddDate(0, 0, -7)
	var recent []*types.Trade
	for _, t := range trades {
		if t != nil && !t.Date.Before(weekStart) {
			recent = append(recent, t)
		}
	}
	return recent
}

// handleGamification returns streaks, level, challenge status and any
// newly unlocked achievements, which it records as a side effect.
func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	unlockedIDs, totalXP, newUnlocks, err := s.refreshAchievements(user, account, trades)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load achievements")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"streaks":      gamification.CurrentStreaks(trades),
		"stats":        gamification.Summary(trades),
		"level":        gamification.CalculateLevel(totalXP),
		"achievements": unlockedIDs,
		"new_unlocks":  newUnlocks,
		"challenges":   gamification.EvaluateChallenges(s.weekTrades(trades)),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	user, account := journalVars(r)

	trades, err := s.store.List(user, account)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load journal")
		return
	}

	analysis := s.insights.Complete(trades, s.accountSize(r), s.now())
	s.writeJSON(w, http.StatusOK, analysis)
}

// Stateless calculator endpoints.

type positionSizeRequest struct {
	AccountSize float64 `json:"account_size"`
	RiskPct     float64 `json:"risk_pct"`
	EntryPrice  float64 `json:"entry_price"`
	StopLoss    float64 `json:"stop_loss"`
}

func (s *Server) handlePositionSize(w http.ResponseWriter, r *http.Request) {
	var req positionSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report := metrics.PositionSize(req.AccountSize, req.RiskPct, req.EntryPrice, req.StopLoss)
	if report == nil {
		s.writeError(w, http.StatusBadRequest, "invalid sizing parameters")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type riskRewardRequest struct {
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
}

func (s *Server) handleRiskReward(w http.ResponseWriter, r *http.Request) {
	var req riskRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report := metrics.RiskReward(req.EntryPrice, req.StopLoss, req.TakeProfit)
	if report == nil {
		s.writeError(w, http.StatusBadRequest, "invalid risk/reward parameters")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type requiredWinRateRequest struct {
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

func (s *Server) handleRequiredWinRate(w http.ResponseWriter, r *http.Request) {
	var req requiredWinRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report := metrics.RequiredWinRate(req.RiskRewardRatio)
	if report == nil {
		s.writeError(w, http.StatusBadRequest, "ratio must be positive")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type profitTargetsRequest struct {
	EntryPrice float64   `json:"entry_price"`
	RiskAmount float64   `json:"risk_amount"`
	RMultiples []float64 `json:"r_multiples,omitempty"`
}

func (s *Server) handleProfitTargets(w http.ResponseWriter, r *http.Request) {
	var req profitTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	targets := metrics.ProfitTargets(req.EntryPrice, req.RiskAmount, req.RMultiples)
	if targets == nil {
		s.writeError(w, http.StatusBadRequest, "invalid target parameters")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"targets": targets})
}

type riskOfRuinRequest struct {
	AccountSize     float64 `json:"account_size"`
	RiskPerTradePct float64 `json:"risk_per_trade_pct"`
	WinRatePct      float64 `json:"win_rate_pct"`
}

func (s *Server) handleRiskOfRuin(w http.ResponseWriter, r *http.Request) {
	var req riskOfRuinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report := metrics.RiskOfRuin(req.AccountSize, req.RiskPerTradePct, req.WinRatePct)
	if report == nil {
		s.writeError(w, http.StatusBadRequest, "invalid ruin parameters")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
