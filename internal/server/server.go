// Package server implements the grapes HTTP query API.
//
// Routes are served by a chi router. Every request gets an X-Request-ID,
// one log line and a Prometheus observation; errors are rendered as
// {"code", "message"} with NOT_FOUND mapped to 404 and INVALID_* to 400.
// Cached graph answers are dropped by any successful write.
// Filter criteria and controllers are read from the query string, so
//
//	GET /module/app:1.0/dependencies?scope-test=false&show-third-party=false
//
// lists the non-test corporate dependencies of app:1.0.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/grapes/pkg/cache"
	"github.com/matzehuels/grapes/pkg/config"
	"github.com/matzehuels/grapes/pkg/service"
)

// Options configures a Server.
type Options struct {
	// Community links served by /about.
	Community config.CommunityConfig
	// Logger receives one line per request. Nil discards.
	Logger *log.Logger
	// Metrics collects request and hook metrics. Nil creates a private set.
	Metrics *Metrics
	// Cache holds rendered graph query responses for CacheTTL. Nil or a
	// zero TTL disables response caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Server serves the catalog over HTTP.
type Server struct {
	svc       *service.Service
	community config.CommunityConfig
	logger    *log.Logger
	metrics   *Metrics
	cache     cache.Cache
	cacheTTL  time.Duration
	keyer     cache.Keyer
	router    chi.Router

	// generation is part of every response cache key; writes bump it.
	generation atomic.Uint64
}

// New creates a server for svc.
func New(svc *service.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	s := &Server{
		svc:       svc,
		community: opts.Community,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		cacheTTL:  opts.CacheTTL,
		keyer:     cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"+uuid.NewString()+":"),
	}
	if opts.Cache != nil && opts.CacheTTL > 0 {
		s.cache = opts.Cache
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/about", s.handleAbout)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/artifacts", s.handleArtifacts)
	r.Route("/artifact/{gavc}", func(r chi.Router) {
		r.Get("/", s.handleArtifact)
		r.Get("/versions", s.handleArtifactVersions)
		r.Get("/lastversion", s.handleLastVersion)
		r.Get("/lastrelease", s.handleLastRelease)
		r.Get("/uptodate", s.handleUpToDate)
		r.Get("/ancestors", s.handleAncestors)
		r.Get("/organization", s.handleArtifactOrganization)
		r.With(s.invalidateCache).Post("/licenses", s.handleAddLicense)
		r.With(s.invalidateCache).Delete("/licenses/{license}", s.handleRemoveLicense)
		r.With(s.invalidateCache).Post("/donotuse", s.handleDoNotUse)
	})

	r.Get("/modules", s.handleModules)
	r.Route("/module/{id}", func(r chi.Router) {
		r.Get("/", s.handleModule)
		r.Get("/versions", s.handleModuleVersions)
		r.Get("/dependencies", s.handleDependencies)
		r.Get("/licenses", s.handleModuleLicenses)
		r.Get("/organization", s.handleModuleOrganization)
		r.Get("/graph", s.handleModuleGraph)
		r.Get("/promotion", s.handlePromotionReport)
		r.With(s.invalidateCache).Post("/promote", s.handlePromote)
	})

	r.Get("/licenses", s.handleLicenses)
	r.Get("/license/{name}", s.handleLicense)
	r.With(s.invalidateCache).Post("/license/{name}/approve", s.handleApproveLicense)

	r.Get("/organizations", s.handleOrganizations)
	r.Get("/organization/{name}", s.handleOrganization)

	r.Get("/products", s.handleProducts)
	r.Get("/product/{name}", s.handleProduct)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusNotFound, "NOT_FOUND", "No route for "+r.URL.Path)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
