// Package health serves the liveness endpoints plus /stats and /metrics.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"cerealbot/metrics"
	"cerealbot/sysinfo"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// BotStatus is what the gateway client reports about itself
type BotStatus struct {
	BotName string
	Guilds  int
	Users   int
	Latency time.Duration
}

// StatusSource reports live bot state. An error turns /health into a 500.
type StatusSource interface {
	Status(ctx context.Context) (BotStatus, error)
}

type StatusFunc func(ctx context.Context) (BotStatus, error)

func (f StatusFunc) Status(ctx context.Context) (BotStatus, error) {
	return f(ctx)
}

type healthResponse struct {
	Status    string  `json:"status"`
	BotName   string  `json:"bot_name"`
	Guilds    int     `json:"guilds"`
	Users     int     `json:"users"`
	Latency   float64 `json:"latency"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

type errorResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

type pingResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type Server struct {
	source  StatusSource
	metrics *metrics.Metrics
	started time.Time
	now     func() time.Time
	stats   func(ctx context.Context) sysinfo.Snapshot
	http    *http.Server
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithStartTime(t time.Time) Option {
	return func(s *Server) { s.started = t }
}

func WithStats(f func(ctx context.Context) sysinfo.Snapshot) Option {
	return func(s *Server) { s.stats = f }
}

func NewServer(source StatusSource, m *metrics.Metrics, opts ...Option) *Server {
	s := &Server{
		source:  source,
		metrics: m,
		now:     time.Now,
		stats:   sysinfo.Collect,
	}
	for _, o := range opts {
		o(s)
	}
	if s.started.IsZero() {
		s.started = s.now()
	}
	return s
}

// Router builds the chi router; exposed for tests
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/ping", s.handlePing)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Start binds addr and serves in the background. Bind errors are returned immediately.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind health server on %s: %w", addr, err)
	}

	s.http = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", ln.Addr().String()).Info("Health server listening")
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Health server stopped unexpectedly")
		}
	}()
	return nil
}

// Shutdown closes the listener and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down health server: %w", err)
	}
	log.Info("Health server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()

	st, err := s.source.Status(r.Context())
	if err != nil {
		log.WithError(err).Warn("Health check failed")
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Status:    "error",
			Error:     err.Error(),
			Timestamp: timestamp(now),
		})
		return
	}

	respondJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		BotName:   st.BotName,
		Guilds:    st.Guilds,
		Users:     st.Users,
		Latency:   round2(float64(st.Latency) / float64(time.Millisecond)),
		Uptime:    round2(now.Sub(s.started).Seconds()),
		Timestamp: timestamp(now),
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, pingResponse{Status: "pong", Timestamp: timestamp(s.now())})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.stats(r.Context()))
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Debug("Failed to write health response")
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
