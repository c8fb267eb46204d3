// Package server exposes a loaded catalog over a JSON HTTP API.
//
// The catalog is held behind an atomic pointer so a reload replaces it
// without blocking readers. Requests that arrive during a reload see either
// the old or the new catalog, never a partial one.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cpanmap/pkg/catalog"
	"github.com/matzehuels/cpanmap/pkg/enrich"
	"github.com/matzehuels/cpanmap/pkg/watch"
)

// DefaultSearchLimit caps /api/search results when no limit is given.
const DefaultSearchLimit = 20

// MaxSearchLimit is the largest accepted search limit.
const MaxSearchLimit = 500

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	Strict bool           // Passed to catalog loads triggered by Reload
	Enrich enrich.Options // Per-catalog enricher settings
}

// snapshot pairs a catalog with the enricher that memoizes into it.
type snapshot struct {
	catalog  *catalog.Catalog
	enricher *enrich.Enricher
}

// Server serves one catalog at a time.
type Server struct {
	registry enrich.Registry
	opts     Options
	current  atomic.Pointer[snapshot]
	router   chi.Router
}

// New creates a server for c. reg may be nil, in which case the
// registry-backed routes answer 501.
func New(c *catalog.Catalog, reg enrich.Registry, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Enrich.Logger == nil {
		opts.Enrich.Logger = opts.Logger
	}
	s := &Server{registry: reg, opts: opts}
	s.Swap(c)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", handleVersion)
		r.Get("/meta", s.handleMeta)
		r.Get("/stats", s.handleStats)
		r.Get("/cells/{row}/{col}", s.handleCell)
		r.Get("/search", s.handleSearch)
		r.Get("/distros/{name}", s.handleDistro)
		r.Get("/distros/{name}/deps", s.handleDeps)
		r.Get("/distros/{name}/rdeps", s.handleRDeps)
		r.Get("/distros/{name}/graph", s.handleGraph)
		r.Get("/distros/{name}/files/{file}", s.handleFile)
		r.Get("/maintainers/{id}", s.handleMaintainer)
		r.Get("/modules/{module}", s.handleModule)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNoRoute(r))
	})
	return r
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

// Catalog returns the catalog currently served.
func (s *Server) Catalog() *catalog.Catalog { return s.current.Load().catalog }

// Swap replaces the served catalog. Enrichment state memoized on the old
// catalog is discarded with it.
func (s *Server) Swap(c *catalog.Catalog) {
	snap := &snapshot{catalog: c}
	if s.registry != nil {
		snap.enricher = enrich.New(c, s.registry, s.opts.Enrich)
	}
	s.current.Store(snap)
}

// Reload loads path and swaps it in. On failure the current catalog keeps
// being served.
func (s *Server) Reload(ctx context.Context, path string) error {
	c, err := catalog.LoadFile(ctx, path, catalog.LoadOptions{
		Logger: s.opts.Logger,
		Strict: s.opts.Strict,
		Source: path,
	})
	if err != nil {
		return err
	}
	prev := s.Catalog()
	s.Swap(c)
	s.opts.Logger.Info("catalog reloaded", "load_id", c.LoadID, "previous", prev.LoadID,
		"distributions", len(c.Distributions))
	return nil
}

// Watch reloads path whenever it changes until ctx is done.
func (s *Server) Watch(ctx context.Context, path string, debounce time.Duration) error {
	w, err := watch.New(path, debounce)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	s.opts.Logger.Info("watching map data", "path", w.Path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Removed {
				s.opts.Logger.Warn("map data file removed, keeping current catalog", "path", ev.Path)
				continue
			}
			if err := s.Reload(ctx, ev.Path); err != nil {
				s.opts.Logger.Error("reload failed, keeping current catalog", "path", ev.Path, "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.opts.Logger.Warn("watch error", "err", err)
		}
	}
}

// ListenAndServe serves the API on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("serving", "addr", addr, "load_id", s.Catalog().LoadID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
