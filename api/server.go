package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"police-dashboard/cache"
	"police-dashboard/database"
	"police-dashboard/database/types"
	"police-dashboard/logging"
	"police-dashboard/metrics"
	"police-dashboard/realtime"
)

// StopStore is the storage the dashboard reads and appends to
type StopStore interface {
	InsertStop(ctx context.Context, stop *database.StopRecord) error
	GetStop(ctx context.Context, id int64) (*database.StopRecord, error)
	DistinctOptions(ctx context.Context) types.DistinctOptions
	RunNamedQuery(ctx context.Context, name string, overrides map[string]int) (*types.ResultSet, error)
	Report(ctx context.Context) ([]types.ReportRow, error)
	Ping(ctx context.Context) error
}

// Server handles the dashboard pages and the JSON API
type Server struct {
	store      StopStore
	cache      *cache.RedisClient
	broker     *realtime.Broker
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer creates a new API server instance. cache and broker may be nil.
func NewServer(store StopStore, redis *cache.RedisClient, broker *realtime.Broker) *Server {
	s := &Server{
		store:  store,
		cache:  redis,
		broker: broker,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Tab 1: insert form
	s.mux.HandleFunc("GET /{$}", s.handleStopForm)
	s.mux.HandleFunc("GET /stops/new", s.handleStopForm)
	s.mux.HandleFunc("POST /stops", s.handleStopFormSubmit)
	s.mux.HandleFunc("POST /api/stops", s.handleCreateStop)
	s.mux.HandleFunc("GET /api/stops/{id}", s.handleGetStop)
	s.mux.HandleFunc("GET /api/options", s.handleGetOptions)

	// Tab 2: named queries
	s.mux.HandleFunc("GET /insights", s.handleInsights)
	s.mux.HandleFunc("GET /api/queries", s.handleListQueries)
	s.mux.HandleFunc("GET /api/queries/run", s.handleRunQuery)

	// Tab 3: report
	s.mux.HandleFunc("GET /reports", s.handleReports)
	s.mux.HandleFunc("GET /api/reports", s.handleGetReport)
	s.mux.HandleFunc("GET /api/reports/export.csv", s.handleExportCSV)
	s.mux.HandleFunc("GET /api/reports/export.xlsx", s.handleExportXLSX)

	if s.broker != nil {
		s.mux.Handle("GET /api/events", s.broker)
	}
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routes wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.loggingMiddleware(s.mux))
}

// Start serves on port until Shutdown is called
func (s *Server) Start(port int) error {
	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	s.httpServer = &http.Server{
		Addr:              serverAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info().Str("addr", serverAddr).Msg("🚀 Dashboard starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(r.Method, pattern, strconv.Itoa(rec.status), elapsed)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

// statusRecorder captures the response code for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps the event stream working behind the middleware
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
