// Package api exposes the agent's HTTP surface: record CRUD, profile,
// connection status, manual sync, notifications, and the AI gateway.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/gateway"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/health"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/notify"
	"github.com/NayandG07/LifeSync-AI-sub001/internal/profile"
	intsync "github.com/NayandG07/LifeSync-AI-sub001/internal/sync"
)

// Server manages the HTTP server lifecycle for the agent.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// Deps collects everything the HTTP surface serves.
type Deps struct {
	UserID     string
	Records    RecordStore
	Profiles   *profile.Service
	Reporter   *health.Reporter
	Reconciler *intsync.Reconciler
	Center     *notify.Center
	AI         *gateway.Handler
}

// NewServer creates an HTTP server bound to addr.
func NewServer(addr string, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{deps: deps, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /v1/status", h.status)
	mux.HandleFunc("POST /v1/sync", h.sync)
	mux.HandleFunc("GET /v1/records/{kind}", h.listRecords)
	mux.HandleFunc("POST /v1/records/{kind}", h.createRecord)
	mux.HandleFunc("DELETE /v1/records/{kind}", h.deleteAllRecords)
	mux.HandleFunc("DELETE /v1/records/{kind}/{id}", h.deleteRecord)
	mux.HandleFunc("GET /v1/profile", h.getProfile)
	mux.HandleFunc("PUT /v1/profile", h.putProfile)
	mux.HandleFunc("GET /v1/notifications", h.notifications)
	if deps.AI != nil {
		mux.Handle("/v1/ai", deps.AI)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Long enough for an upstream AI call plus overhead.
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("http server shutdown", zap.Error(err))
	}
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
