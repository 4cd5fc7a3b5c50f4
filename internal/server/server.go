// Package server serves the portfolio site and its JSON API.
//
// Pages are rendered with html/template from embedded templates; the about
// page copy is Markdown rendered by goldmark. The JSON API exposes albums,
// masonry layouts for a container width, the featured-photo rotation and
// the contact form relay.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reactiveshots/portfolio/pkg/content"
	"github.com/reactiveshots/portfolio/pkg/gallery"
	"github.com/reactiveshots/portfolio/pkg/mailer"
)

// Layouts computes masonry layouts. *gallery.Runner implements it.
type Layouts interface {
	Layout(ctx context.Context, slug string, width float64, refresh bool) (*gallery.Result, error)
}

// Albums fetches albums. *content.Client implements it.
type Albums interface {
	Album(ctx context.Context, slug string, refresh bool) (*content.Album, error)
}

// Featured exposes the featured-photo rotation. *gallery.Rotator implements it.
type Featured interface {
	Snapshot() gallery.Featured
}

// Sender relays inquiries. *mailer.Client implements it.
type Sender interface {
	Send(ctx context.Context, q mailer.Inquiry) (mailer.Receipt, error)
}

// Options wires a Server.
type Options struct {
	Logger   *log.Logger
	Layouts  Layouts
	Albums   Albums
	Featured Featured
	Mailer   Sender
	Limiter  *mailer.Limiter

	// Hooks, when set, adds its counters to /healthz.
	Hooks *LogHooks

	// RequestTimeout bounds each request; zero disables the bound.
	RequestTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	logger *log.Logger
	pages  *pages
	router chi.Router
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Layouts == nil || opts.Albums == nil || opts.Featured == nil || opts.Mailer == nil {
		return nil, errors.New("server: layouts, albums, featured and mailer are required")
	}

	p, err := loadPages()
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	s := &Server{opts: opts, logger: opts.Logger, pages: p}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	r.Get("/", s.handleHome)
	r.Get("/about", s.handleAbout)
	r.Get("/pricing", s.handlePricing)
	r.Get("/pricing/{category}", s.handlePricingCategory)
	r.Get("/gallery", s.handleGallery)
	r.Get("/gallery/{category}", s.handleAlbumPage)
	r.Get("/lets-talk", s.handleContactPage)
	r.Post("/lets-talk", s.handleContactForm)

	r.Route("/api", func(r chi.Router) {
		r.Get("/albums/{category}", s.handleAlbum)
		r.Get("/albums/{category}/layout", s.handleLayout)
		r.Get("/featured", s.handleFeatured)
		r.Post("/contact", s.handleContact)
	})
	r.Get("/healthz", s.handleHealth)

	r.NotFound(s.handleNotFound)
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
