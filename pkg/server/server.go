package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidmaw/hotdaily/internal/store"
	"github.com/voidmaw/hotdaily/internal/subs"
	"github.com/voidmaw/hotdaily/pkg/report"
	"github.com/voidmaw/hotdaily/pkg/source"
)

// Server provides the HTTP API.
type Server struct {
	history  store.Store
	registry *source.Registry
	subs     *subs.Store
	worker   *report.Worker
	port     int
}

// New creates a new HTTP server.
func New(history store.Store, registry *source.Registry, subStore *subs.Store, worker *report.Worker, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		history:  history,
		registry: registry,
		subs:     subStore,
		worker:   worker,
		port:     port,
	}
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled or
// the listener fails. Cancellation drains in-flight requests before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/picks", s.handlePicks)
	mux.HandleFunc("/api/v1/sources", s.handleSources)
	mux.HandleFunc("/api/v1/report", s.handleReport)
	mux.HandleFunc("/api/v1/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/api/v1/subscriptions/", s.handleSubscription)

	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.ListOpts{Limit: 100}
	if sec := r.URL.Query().Get("section"); sec != "" {
		opts.Section = source.NormalizeSection(sec)
	}
	if src := r.URL.Query().Get("source"); src != "" {
		opts.Source = src
	}
	if since := r.URL.Query().Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			opts.Since = t
		}
	}

	picks, err := s.history.ListPicks(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  picks,
		"count": len(picks),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	counts, err := s.history.CountBySource(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	type sourceInfo struct {
		source.Info
		Picks int `json:"picks"`
	}

	var infos []sourceInfo
	for _, info := range s.registry.List() {
		infos = append(infos, sourceInfo{Info: info, Picks: counts[info.ID]})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  infos,
		"count": len(infos),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var body struct {
		Targets []string `json:"targets"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	queued := s.worker.Enqueue(report.Request{Reason: "manual", Targets: body.Targets})
	if !queued {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "report queue full"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	sessions := s.subs.ListEnabled()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  sessions,
		"count": len(sessions),
	})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimPrefix(r.URL.Path, "/api/v1/subscriptions/")
	if session == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session"})
		return
	}

	switch r.Method {
	case http.MethodPost:
		if err := s.subs.SetEnabled(session, true); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": session, "enabled": true})
	case http.MethodDelete:
		if err := s.subs.SetEnabled(session, false); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": session, "enabled": false})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
