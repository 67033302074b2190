// FilePath: internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edsonsantana1/agrosilo/api"
	"github.com/edsonsantana1/agrosilo/internal/analytics"
	"github.com/edsonsantana1/agrosilo/internal/assessment"
	"github.com/edsonsantana1/agrosilo/internal/cache"
	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/database"
	"github.com/edsonsantana1/agrosilo/internal/hubservice"
	"github.com/edsonsantana1/agrosilo/internal/ingest"
	"github.com/edsonsantana1/agrosilo/internal/monitoring"
	"github.com/edsonsantana1/agrosilo/internal/policy"
	"github.com/edsonsantana1/agrosilo/internal/repository/postgres"
	"github.com/edsonsantana1/agrosilo/internal/repository/timescale"
	"github.com/edsonsantana1/agrosilo/internal/scheduler"
	"github.com/edsonsantana1/agrosilo/internal/telemetry"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	pipeline   *ingest.Pipeline
	monitoring *monitoring.Service
	tsdb       database.DB
	appDB      database.DB
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start wires the service graph, starts the background pollers and begins
// listening for requests.
func (s *Server) Start() error {
	s.tsdb = initTimescaleDB(s.config.Database.TimescaleDB)
	s.appDB = initAppDB(s.config.Database.AppDB)

	silos, err := postgres.NewSiloRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize silo repository: %v", err)
	}
	sensors, err := postgres.NewSensorRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize sensor repository: %v", err)
	}
	assessments, err := postgres.NewAssessmentRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize assessment repository: %v", err)
	}
	readings, err := timescale.NewReadingRepository(s.tsdb, s.config.Ingest.RetentionDays)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}

	// The cache is optional: no Redis host disables it, and a connection
	// failure only degrades the service to repository lookups.
	var c *cache.Cache
	if s.config.Redis.Host != "" {
		c, err = cache.New(s.config.Redis, s.config.Analytics.CacheTTL)
		if err != nil {
			nuts.L.Warnf("[Server] Cache disabled: %v", err)
			c = nil
		}
	}

	client, err := telemetry.NewThingSpeakClient(s.config.Telemetry)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize telemetry client: %v", err)
	}

	pol := policy.New(s.config.Policy)
	s.monitoring = monitoring.NewService()

	builder := assessment.NewBuilder(pol, assessments, c)
	s.pipeline = ingest.New(client, sensors, readings, silos, builder, s.monitoring, s.config.Ingest, s.config.Telemetry.Results)

	s.hubservice = hubservice.New(silos, sensors, readings, assessments, c)
	if err := s.hubservice.Validate(); err != nil {
		nuts.L.Fatalf("[Server] Invalid service wiring: %v", err)
	}

	analysis := analytics.New(sensors, readings, pol, s.config.Analytics)

	// Set up cleanup event handlers
	s.setupCleanupHandlers()

	router := api.NewRouter(s.hubservice, s.pipeline, analysis, s.config.Analytics, s.handleHealth(), s.handleMetrics())

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	s.srv.Handler = handlers.CombinedLoggingHandler(os.Stdout, cors(router))

	ctx, cancel := context.WithCancel(context.Background())

	ingestPoller := scheduler.NewPoller("ingest", s.config.Ingest.PollInterval, s.pipeline.Cycle, nil)
	go ingestPoller.Run(ctx)

	if days := s.config.Ingest.RetentionDays; days > 0 {
		retention := scheduler.NewPoller("retention", 24*time.Hour, func(ctx context.Context) error {
			cutoff := time.Now().UTC().AddDate(0, 0, -days)
			return s.hubservice.Cleanup.PruneReadings(ctx, cutoff)
		}, nil)
		go retention.Run(ctx)
	}

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown(cancel)
}

// waitForShutdown waits for interrupt signal, stops the pollers and
// gracefully shuts down the server
func (s *Server) waitForShutdown(cancel context.CancelFunc) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")
	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancelTimeout()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	if err := s.tsdb.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing measurement store: %v", err)
	}
	if err := s.appDB.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing registry database: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth reports liveness plus the reachability of both databases.
func (s *Server) handleHealth() http.HandlerFunc {
	type health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancelPing := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancelPing()

		status := health{Status: "ok", Version: nuts.GetVersion()}
		code := http.StatusOK
		if s.appDB.Ping(ctx) != nil || s.tsdb.Ping(ctx) != nil {
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}

// handleMetrics exposes the in-process operational counters.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(s.monitoring.Snapshot())
	}
}

func (s *Server) setupCleanupHandlers() {
	// Handle silo deletion events
	s.hubservice.Cleanup.OnCleanup("silo.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Silo %s and all associated data deleted", id)
		s.monitoring.RecordEvent("silo_deletion", map[string]string{
			"silo_id": id,
		})
	})

	// Handle sensor deletion events
	s.hubservice.Cleanup.OnCleanup("sensor.deleted", func(id string) {
		nuts.L.Infof("[Cleanup] Sensor %s and all associated data deleted", id)
		s.monitoring.RecordEvent("sensor_deletion", map[string]string{
			"sensor_id": id,
		})
	})

	// Handle retention pruning events
	s.hubservice.Cleanup.OnCleanup("data.pruned", func(cutoff string) {
		s.monitoring.RecordEvent("retention_prune", map[string]string{
			"cutoff": cutoff,
		})
	})
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	db, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return db
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return db
}
