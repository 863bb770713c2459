package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"league-engine/forecast"
	"league-engine/models"
	"league-engine/season"
	"league-engine/store"
)

const maxAdvanceSteps = 500

type Config struct {
	Port         string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	Workers      int
	ForecastRuns int
	LogLevel     string
	LogFormat    string
	Seed         int64
}

func NewConfig() *Config {
	workers, err := strconv.Atoi(getEnv("WORKERS", "4"))
	if err != nil || workers < 1 {
		workers = 4
	}
	forecastRuns, err := strconv.Atoi(getEnv("FORECAST_RUNS", "1000"))
	if err != nil || forecastRuns < 1 {
		forecastRuns = 1000
	}
	seed, err := strconv.ParseInt(getEnv("SEED", "0"), 10, 64)
	if err != nil {
		seed = 0
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "league_user"),
		DBPassword:   getEnv("DB_PASSWORD", "league_pass"),
		DBName:       getEnv("DB_NAME", "league_engine"),
		Workers:      workers,
		ForecastRuns: forecastRuns,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		Seed:         seed,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

type Server struct {
	config     *Config
	logger     *logrus.Logger
	router     *mux.Router
	httpServer *http.Server

	db        *pgxpool.Pool
	snapshots *store.SnapshotStore

	forecaster *forecast.Forecaster

	mu     sync.Mutex
	season *season.Season
}

// NewServer wires the full service. The database is optional: when no
// connection can be established the server still runs, with snapshot
// persistence disabled.
func NewServer(config *Config, logger *logrus.Logger) *Server {
	s := &Server{
		config:     config,
		logger:     logger,
		router:     mux.NewRouter(),
		forecaster: forecast.New(config.ForecastRuns, config.Workers, config.Seed, logger),
	}

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err == nil {
		var db *pgxpool.Pool
		dbConfig.MaxConns = int32(config.Workers * 2)
		dbConfig.MinConns = 1
		dbConfig.MaxConnLifetime = time.Hour
		dbConfig.MaxConnIdleTime = time.Minute * 30

		db, err = pgxpool.NewWithConfig(context.Background(), dbConfig)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = db.Ping(ctx)
			cancel()
			if err == nil {
				s.db = db
				s.snapshots = store.NewSnapshotStore(db)
				if initErr := s.snapshots.Init(context.Background()); initErr != nil {
					logger.WithError(initErr).Warn("Snapshot table init failed, persistence disabled")
					s.snapshots = nil
				}
			} else {
				db.Close()
			}
		}
	}
	if s.db == nil {
		logger.WithError(err).Warn("Database unavailable, running without snapshot persistence")
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods("GET")

	s.router.HandleFunc("/season", s.createSeasonHandler).Methods("POST")
	s.router.HandleFunc("/season", s.getSeasonHandler).Methods("GET")
	s.router.HandleFunc("/season/advance", s.advanceHandler).Methods("POST")
	s.router.HandleFunc("/season/save", s.saveSeasonHandler).Methods("POST")
	s.router.HandleFunc("/season/snapshots", s.listSnapshotsHandler).Methods("GET")
	s.router.HandleFunc("/season/load/{id}", s.loadSeasonHandler).Methods("POST")

	s.router.HandleFunc("/standings", s.allStandingsHandler).Methods("GET")
	s.router.HandleFunc("/standings/{conference}", s.standingsHandler).Methods("GET")

	s.router.HandleFunc("/teams/{id}", s.teamHandler).Methods("GET")
	s.router.HandleFunc("/teams/{id}/cap", s.teamCapHandler).Methods("GET")

	s.router.HandleFunc("/trades", s.tradeHandler).Methods("POST")
	s.router.HandleFunc("/freeagents", s.freeAgentsHandler).Methods("GET")
	s.router.HandleFunc("/freeagents/sign", s.signHandler).Methods("POST")
	s.router.HandleFunc("/players/release", s.releaseHandler).Methods("POST")
	s.router.HandleFunc("/transactions", s.transactionsHandler).Methods("GET")

	s.router.HandleFunc("/games/recent", s.recentGamesHandler).Methods("GET")
	s.router.HandleFunc("/forecast", s.forecastHandler).Methods("POST")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
}

func (s *Server) Start() error {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})

	handler := handlers.CompressHandler(c.Handler(s.router))

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("port", s.config.Port).Info("Starting league engine")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down league engine")
	if s.db != nil {
		s.db.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Middleware

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.RequestURI,
			"status":   lrw.statusCode,
			"duration": time.Since(start).String(),
		}).Info("Request handled")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.WithField("panic", err).Error("Panic recovered")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Handlers

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC(),
		"database": "absent",
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			health["database"] = "disconnected"
		} else {
			health["database"] = "connected"
		}
	}

	s.mu.Lock()
	if s.season != nil {
		health["season"] = map[string]interface{}{
			"year":  s.season.Year(),
			"phase": s.season.Phase(),
			"day":   s.season.Day(),
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) createSeasonHandler(w http.ResponseWriter, r *http.Request) {
	var data season.LeagueData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sea, err := season.New(data, s.config.Seed, s.logger)
	if err != nil {
		var cfgErr *models.ConfigError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		s.logger.WithError(err).Error("Season init failed")
		writeError(w, http.StatusInternalServerError, "failed to initialize season")
		return
	}

	s.mu.Lock()
	s.season = sea
	summary := s.seasonSummary(sea)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"year":  sea.Year(),
		"teams": len(data.Teams),
	}).Info("Season initialized")

	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) getSeasonHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.seasonSummary(s.season))
}

// seasonSummary assumes the caller holds s.mu.
func (s *Server) seasonSummary(sea *season.Season) map[string]interface{} {
	summary := map[string]interface{}{
		"year":     sea.Year(),
		"phase":    sea.Phase(),
		"day":      sea.Day(),
		"schedule": len(sea.Schedule()),
	}
	if bracket := sea.Bracket(); len(bracket) > 0 {
		summary["bracket"] = bracket
	}
	if finals := sea.Finals(); finals != nil {
		summary["finals"] = finals
	}
	if champion := sea.ChampionID(); champion != "" {
		summary["champion_id"] = champion
	}
	return summary
}

func (s *Server) advanceHandler(w http.ResponseWriter, r *http.Request) {
	steps := 1
	if raw := r.URL.Query().Get("steps"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxAdvanceSteps {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("steps must be between 1 and %d", maxAdvanceSteps))
			return
		}
		steps = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}

	var games []*season.GameSummary
	for i := 0; i < steps; i++ {
		if g := s.season.Advance(); g != nil {
			games = append(games, g)
		}
	}

	response := map[string]interface{}{
		"phase": s.season.Phase(),
		"day":   s.season.Day(),
		"games": games,
	}
	if champion := s.season.ChampionID(); champion != "" {
		response["champion_id"] = champion
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) allStandingsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.GetAllStandings())
}

func (s *Server) standingsHandler(w http.ResponseWriter, r *http.Request) {
	conf := models.Conference(mux.Vars(r)["conference"])
	if !conf.Valid() {
		writeError(w, http.StatusBadRequest, "unknown conference")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.GetStandings(conf))
}

func (s *Server) teamHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}

	team, err := s.season.GetTeam(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Server) teamCapHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}

	info, err := s.season.GetTeamCapInfo(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type tradeRequest struct {
	FromTeamID    string   `json:"from_team_id"`
	ToTeamID      string   `json:"to_team_id"`
	FromPlayerIDs []string `json:"from_player_ids"`
	ToPlayerIDs   []string `json:"to_player_ids"`
}

func (s *Server) tradeHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	result := s.season.ProposeTrade(req.FromTeamID, req.ToTeamID, req.FromPlayerIDs, req.ToPlayerIDs)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) freeAgentsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.GetFreeAgents())
}

type signRequest struct {
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	Salary   int64  `json:"salary"`
	Years    int    `json:"years"`
}

func (s *Server) signHandler(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.SignFreeAgent(req.TeamID, req.PlayerID, req.Salary, req.Years))
}

type releaseRequest struct {
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
}

func (s *Server) releaseHandler(w http.ResponseWriter, r *http.Request) {
	var req releaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.ReleasePlayer(req.TeamID, req.PlayerID))
}

func (s *Server) transactionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.GetTransactionLog())
}

func (s *Server) recentGamesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.season == nil {
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	writeJSON(w, http.StatusOK, s.season.RecentGames())
}

type forecastRequest struct {
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Runs       int    `json:"runs"`
}

func (s *Server) forecastHandler(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	if s.season == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	home, away, err := s.season.Matchup(req.HomeTeamID, req.AwayTeamID)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	forecaster := s.forecaster
	if req.Runs > 0 {
		forecaster = forecast.New(req.Runs, s.config.Workers, s.config.Seed, s.logger)
	}

	result, err := forecaster.Forecast(r.Context(), home, away)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type saveRequest struct {
	Label string `json:"label"`
}

func (s *Server) saveSeasonHandler(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot persistence unavailable")
		return
	}

	var req saveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	s.mu.Lock()
	if s.season == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "no active season")
		return
	}
	state := s.season.Snapshot()
	s.mu.Unlock()

	id, err := s.snapshots.Save(r.Context(), state, req.Label)
	if err != nil {
		s.logger.WithError(err).Error("Snapshot save failed")
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) listSnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot persistence unavailable")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	metas, err := s.snapshots.List(r.Context(), limit)
	if err != nil {
		s.logger.WithError(err).Error("Snapshot list failed")
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) loadSeasonHandler(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot persistence unavailable")
		return
	}

	id := mux.Vars(r)["id"]
	state, err := s.snapshots.Load(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("snapshot %s not found", id))
		return
	}

	sea, err := season.Restore(state, s.logger)
	if err != nil {
		s.logger.WithError(err).Error("Snapshot restore failed")
		writeError(w, http.StatusInternalServerError, "failed to restore snapshot")
		return
	}

	s.mu.Lock()
	s.season = sea
	summary := s.seasonSummary(sea)
	s.mu.Unlock()

	s.logger.WithField("snapshot", id).Info("Season restored from snapshot")
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func main() {
	config := NewConfig()
	logger := newLogger(config)

	server := NewServer(config, logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}
