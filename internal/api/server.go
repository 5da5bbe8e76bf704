package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/kiritoko1029/glmcode/internal/report"
	"github.com/rs/zerolog"
)

const defaultRefreshTimeout = 10 * time.Second

type Options struct {
	Addr     string
	CacheTTL time.Duration
	// Timeout bounds each upstream refresh; zero means 10s.
	Timeout time.Duration
	Logger  zerolog.Logger
}

type Server struct {
	client  report.Getter
	target  *platform.Target
	cache   *Cache
	metrics *Metrics
	timeout time.Duration
	logger  zerolog.Logger
	server  *http.Server
}

func NewServer(client report.Getter, target *platform.Target, opts Options) *Server {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}

	s := &Server{
		client:  client,
		target:  target,
		cache:   NewCache(opts.CacheTTL),
		metrics: NewMetrics(),
		timeout: timeout,
		logger:  opts.Logger,
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	s.registerHandlers(r)
	return r
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Str("platform", string(s.target.Platform)).Msg("starting API server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
