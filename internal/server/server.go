// Package server exposes the activity feed over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/feed"
	"github.com/unkn0wn-root/asidecache/provider"
)

// Loader builds the activities page. *feed.Service implements it.
type Loader interface {
	Load(ctx context.Context, forceRefresh bool) (*feed.Page, error)
}

type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration // 0 => no per-request timeout

	MetricsPath string       // mounted only when Metrics is set
	Metrics     http.Handler // e.g. promhttp.HandlerFor(registry, ...)

	// Pinger, when set, is checked by /healthz.
	Pinger provider.Pinger
	Logger asidecache.Logger
}

type Server struct {
	cfg    Config
	feed   Loader
	log    asidecache.Logger
	router chi.Router
	http   *http.Server
}

func New(cfg Config, l Loader) *Server {
	s := &Server{cfg: cfg, feed: l, log: cfg.Logger}
	if s.log == nil {
		s.log = asidecache.NopLogger{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/activities", s.handleActivities)
	r.Get("/healthz", s.handleHealth)
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.Metrics)
	}
	s.router = r

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info("http server listening", asidecache.Fields{"addr": s.cfg.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh must be a boolean"})
			return
		}
		force = b
	}

	page, err := s.feed.Load(r.Context(), force)
	if err != nil {
		s.log.Error("activities page failed", asidecache.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"err":        err,
		})
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Pinger != nil {
		if err := s.cfg.Pinger.Ping(r.Context()); err != nil {
			s.log.Warn("health check failed", asidecache.Fields{"err": err})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request", asidecache.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
