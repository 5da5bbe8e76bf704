package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/quota"
	"github.com/kiritoko1029/glmcode/internal/report"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"platform": string(s.target.Platform),
	})
}

func (s *Server) quotaHandler(w http.ResponseWriter, r *http.Request) {
	snap, hit, err := s.snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("Last-Modified", snap.FetchedAt.UTC().Format(http.TimeFormat))
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	// A failed refresh still serves the last observed values and the error counter.
	s.snapshot(r.Context())
	s.metrics.Handler().ServeHTTP(w, r)
}

// snapshot returns the cached quota or fetches a fresh one.
func (s *Server) snapshot(ctx context.Context) (*Snapshot, bool, error) {
	if snap, ok := s.cache.Fresh(); ok {
		return snap, true, nil
	}

	snap, err := s.refresh(ctx)
	if err != nil {
		s.metrics.RefreshErrors.Inc()
		s.logger.Error().Err(err).Msg("quota refresh failed")
		return nil, false, err
	}
	s.cache.Store(snap)
	s.metrics.Observe(string(s.target.Platform), snap.Quota)
	return snap, false, nil
}

func (s *Server) refresh(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := s.client.Get(ctx, s.target.Endpoints.QuotaLimit)
	if err != nil {
		return nil, fmt.Errorf("[Quota limit] %w", err)
	}

	parsed, err := report.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decode quota limit: %w", err)
	}

	var typed monitor.QuotaLimitResponse
	if err := json.Unmarshal(body, &typed); err != nil {
		return nil, fmt.Errorf("decode quota limit: %w", err)
	}

	return &Snapshot{
		Processed: report.ProcessedView(parsed, quota.ProcessQuotaLimit),
		Quota:     typed.Quota(),
		FetchedAt: time.Now(),
	}, nil
}

func (s *Server) registerHandlers(r chi.Router) {
	r.Get("/api/v1/health", s.healthHandler)
	r.Get("/api/v1/quota", s.quotaHandler)
	r.Get("/metrics", s.metricsHandler)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}
