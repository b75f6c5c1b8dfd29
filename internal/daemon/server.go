package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jcdickinson/rsdoc/internal/config"
	"github.com/jcdickinson/rsdoc/internal/docs"
	"github.com/jcdickinson/rsdoc/internal/registry"
	"github.com/jcdickinson/rsdoc/internal/rpc"
)

const preloadConcurrency = 4

// Registry is the subset of the crates.io client the daemon uses.
type Registry interface {
	DefaultVersion(ctx context.Context, name string) (string, error)
	Search(ctx context.Context, query string, limit int) ([]registry.Crate, error)
}

// Server owns the process-wide crate cache and answers requests over a unix
// socket.
type Server struct {
	cfg        *config.Config
	socketPath string
	logger     *slog.Logger
	fetcher    docs.CrateFetcher
	registry   Registry
	service    *docs.Service
	metrics    *Metrics
	httpServer *http.Server
	listener   net.Listener

	mu         sync.Mutex
	expTimer   *time.Timer
	expiration time.Duration

	stopOnce sync.Once
	stopped  chan struct{}
	stopErr  error
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithFetcher replaces the docs.rs fetcher.
func WithFetcher(f docs.CrateFetcher) ServerOption {
	return func(s *Server) {
		s.fetcher = f
	}
}

// WithRegistry replaces the crates.io client.
func WithRegistry(r Registry) ServerOption {
	return func(s *Server) {
		s.registry = r
	}
}

func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

func NewServer(cfg *config.Config, socketPath string, opts ...ServerOption) *Server {
	expSec := cfg.Daemon.ExpirationSeconds
	if expSec <= 0 {
		expSec = 600
	}

	s := &Server{
		cfg:        cfg,
		socketPath: socketPath,
		logger:     slog.Default(),
		expiration: time.Duration(expSec) * time.Second,
		stopped:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		s.fetcher = docs.NewFetcher(
			docs.WithBaseURL(cfg.Docs.BaseURL),
			docs.WithUserAgent(cfg.Docs.UserAgent),
			docs.WithTimeout(cfg.Docs.Timeout),
			docs.WithLogger(s.logger),
		)
	}
	if s.registry == nil {
		s.registry = registry.NewClient(
			registry.WithBaseURL(cfg.Registry.BaseURL),
			registry.WithUserAgent(cfg.Docs.UserAgent),
			registry.WithInterval(cfg.Registry.RateLimit),
		)
	}

	cache := docs.NewCache(cfg.Docs.Cache.MaxEntries, cfg.Docs.Cache.TTL, docs.WithCacheLogger(s.logger))
	s.metrics = NewMetrics(cache)
	s.service = docs.NewService(cache, s.metrics.InstrumentFetcher(s.fetcher),
		docs.WithVersionResolver(s.registry),
		docs.WithDocsBaseURL(cfg.Docs.BaseURL),
		docs.WithServiceLogger(s.logger),
	)
	return s
}

// Handler returns the daemon's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /crate-docs", s.route("crate-docs", s.handleCrateDocs))
	mux.HandleFunc("POST /doc-item", s.route("doc-item", s.handleDocItem))
	mux.HandleFunc("POST /search-docs", s.route("search-docs", s.handleSearchDocs))
	mux.HandleFunc("POST /search-crates", s.route("search-crates", s.handleSearchCrates))
	mux.HandleFunc("GET /status", s.route("status", s.handleStatus))
	mux.HandleFunc("POST /clear-cache", s.route("clear-cache", s.handleClearCache))
	mux.HandleFunc("POST /shutdown", s.handleShutdown)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// Start listens on the socket and serves until ctx ends, the daemon is
// idle for too long, or a shutdown request arrives.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s.Handler()}

	s.mu.Lock()
	s.expTimer = time.AfterFunc(s.expiration, s.expire)
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.shutdown)
	defer stop()

	go s.preload(ctx)

	s.logger.Info("daemon listening", "socket", s.socketPath, "expiration", s.expiration)

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	<-s.stopped
	return s.stopErr
}

// Stop shuts the server down and removes the socket. It is safe to call
// more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		defer close(s.stopped)

		s.mu.Lock()
		if s.expTimer != nil {
			s.expTimer.Stop()
		}
		s.mu.Unlock()

		var errs []error
		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(ctx); err != nil {
				s.logger.Error("shutdown error", "error", err)
				errs = append(errs, err)
			}
		}
		if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
			s.logger.Error("socket remove error", "error", err)
			errs = append(errs, err)
		}
		s.stopErr = errors.Join(errs...)
	})
	return s.stopErr
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
}

func (s *Server) expire() {
	s.logger.Info("expiring due to inactivity")
	s.shutdown()
}

func (s *Server) resetExpiration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expTimer != nil {
		s.expTimer.Reset(s.expiration)
	}
}

// preload warms the cache with the configured crates. Failures are logged
// and do not stop the daemon.
func (s *Server) preload(ctx context.Context) {
	specs := s.cfg.Docs.Preload
	if len(specs) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadConcurrency)
	for _, spec := range specs {
		g.Go(func() error {
			_, version, err := s.service.Crate(gctx, spec.Name, spec.Version)
			if err != nil {
				s.logger.Warn("preload failed", "crate", spec.String(), "error", err)
				return nil
			}
			s.logger.Info("preloaded crate", "crate", spec.Name, "version", version)
			return nil
		})
	}
	_ = g.Wait()
}

// route resets the inactivity timer and records request metrics.
func (s *Server) route(name string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.resetExpiration()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		handler(rec, r)
		s.metrics.RecordRequest(name, rec.code, time.Since(start))
	}
}

func (s *Server) handleCrateDocs(w http.ResponseWriter, r *http.Request) {
	var req rpc.CrateDocsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing crate name")
		return
	}

	text, err := s.service.CrateDocs(r.Context(), req.Name, req.Version, req.ModulePath)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rpc.TextResponse{Text: text})
}

func (s *Server) handleDocItem(w http.ResponseWriter, r *http.Request) {
	var req rpc.DocItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Name == "" || req.ItemPath == "" {
		writeError(w, http.StatusBadRequest, "missing crate name or item path")
		return
	}

	text, err := s.service.DocItem(r.Context(), req.Name, req.Version, req.ItemPath, req.ResolveLinks)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rpc.TextResponse{Text: text})
}

func (s *Server) handleSearchDocs(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchDocsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Name == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing crate name or query")
		return
	}

	text, err := s.service.SearchDocs(r.Context(), req.Name, req.Version, req.Query, req.Limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rpc.TextResponse{Text: text})
}

func (s *Server) handleSearchCrates(w http.ResponseWriter, r *http.Request) {
	var req rpc.SearchCratesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	results, err := s.registry.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if results == nil {
		results = []registry.Crate{}
	}
	writeJSON(w, http.StatusOK, rpc.SearchCratesResponse{Results: results})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cache := s.service.Cache()
	stats := cache.Stats()

	crates := []rpc.CachedCrate{}
	for _, key := range cache.Keys() {
		crates = append(crates, rpc.CachedCrate{Name: key.Name, Version: key.Version})
	}

	writeJSON(w, http.StatusOK, rpc.StatusResponse{
		Crates:      crates,
		MaxEntries:  s.cfg.Docs.Cache.MaxEntries,
		TTLSeconds:  s.cfg.Docs.Cache.TTL.Seconds(),
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		Expirations: stats.Expirations,
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.service.Clear()
	s.logger.Info("crate cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	go s.shutdown()
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// errorStatus maps a service error to the status the client sees.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, docs.ErrModuleNotFound),
		errors.Is(err, docs.ErrItemNotFound),
		errors.Is(err, docs.ErrNotFound),
		errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docs.ErrDocsUnavailable):
		return http.StatusNotAcceptable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, rpc.ErrorResponse{Error: msg})
}
