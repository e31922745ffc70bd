package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/internal/alerts"
	"github.com/a2o90/trading-journal-pro-sub000/internal/insights"
	"github.com/a2o90/trading-journal-pro-sub000/internal/journal"
	"github.com/a2o90/trading-journal-pro-sub000/internal/metrics"
	"github.com/a2o90/trading-journal-pro-sub000/internal/telemetry"
	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Server is the HTTP/WebSocket API server.
type Server struct {
	logger     *zap.Logger
	config     *types.Config
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	hub        *Hub

	store      *journal.Store
	calculator *metrics.Calculator
	detector   *alerts.Detector
	insights   *insights.Generator

	// now is swappable for tests; checks that depend on "today" take
	// their reference instant from it.
	now func() time.Time
}

// NewServer creates a new API server.
func NewServer(logger *zap.Logger, config *types.Config, store *journal.Store, hub *Hub) *Server {
	server := &Server{
		logger:     logger,
		config:     config,
		router:     mux.NewRouter(),
		hub:        hub,
		store:      store,
		calculator: metrics.NewCalculator(logger),
		detector:   alerts.NewDetector(logger, config.Alerts),
		insights:   insights.NewGenerator(logger),
		now:        time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Use(telemetry.Middleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Journal CRUD
	j := api.PathPrefix("/journal/{user}/{account}").Subrouter()
	j.HandleFunc("/trades", s.handleAddTrade).Methods("POST")
	j.HandleFunc("/trades", s.handleListTrades).Methods("GET")
	j.HandleFunc("/trades/{id:[0-9]+}", s.handleGetTrade).Methods("GET")
	j.HandleFunc("/trades/{id:[0-9]+}", s.handleUpdateTrade).Methods("PUT")
	j.HandleFunc("/trades/{id:[0-9]+}", s.handleDeleteTrade).Methods("DELETE")
	j.HandleFunc("/trades", s.handleWipeJournal).Methods("DELETE")

	// Analysis
	j.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	j.HandleFunc("/kelly", s.handleKelly).Methods("GET")
	j.HandleFunc("/expectancy", s.handleExpectancy).Methods("GET")
	j.HandleFunc("/risk-report", s.handleRiskReport).Methods("GET")
	j.HandleFunc("/alerts", s.handleAlerts).Methods("GET")
	j.HandleFunc("/streaks", s.handleStreaks).Methods("GET")
	j.HandleFunc("/achievements", s.handleAchievements).Methods("GET")
	j.HandleFunc("/challenges", s.handleChallenges).Methods("GET")
	j.HandleFunc("/gamification", s.handleGamification).Methods("GET")
	j.HandleFunc("/insights", s.handleInsights).Methods("GET")

	// Stateless calculators
	calc := api.PathPrefix("/calc").Subrouter()
	calc.HandleFunc("/position-size", s.handlePositionSize).Methods("POST")
	calc.HandleFunc("/risk-reward", s.handleRiskReward).Methods("POST")
	calc.HandleFunc("/required-winrate", s.handleRequiredWinRate).Methods("POST")
	calc.HandleFunc("/profit-targets", s.handleProfitTargets).Methods("POST")
	calc.HandleFunc("/risk-of-ruin", s.handleRiskOfRuin).Methods("POST")

	// WebSocket
	s.router.HandleFunc(s.config.Server.WebSocketPath, s.handleWebSocket)
}

// Router exposes the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.logger.Info("Starting API server", zap.String("addr", addr))

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleWebSocket upgrades the connection and hands it to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), s.hub, conn)
	s.hub.register <- client

	s.logger.Info("WebSocket client connected", zap.String("id", client.id))

	go client.ReadPump()
	go client.WritePump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
