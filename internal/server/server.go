// Package server exposes a loaded Doxygen site as a sidebar HTTP service.
// The site can be replaced at runtime; connected websocket clients are told
// to reload when that happens.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/morozRed/doxnav/internal/logging"
	"github.com/morozRed/doxnav/internal/site"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP sidebar service.
type Server struct {
	router chi.Router
	site   atomic.Pointer[site.Site]
	hub    *hub
	log    logrus.FieldLogger
}

// New creates a server for s. A nil log discards output.
func New(s *site.Site, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	srv := &Server{
		hub: newHub(log),
		log: log,
	}
	srv.site.Store(s)
	srv.setupRoutes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/sidebar", s.handleSidebar)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/resolve", s.handleResolve)
		r.Get("/search", s.handleSearch)
		r.Get("/fragments/{sentinel}", s.handleFragment)
	})

	s.router = r
}

// Site returns the site currently being served.
func (s *Server) Site() *site.Site {
	return s.site.Load()
}

// Swap replaces the served site and notifies websocket clients.
// Requests already running keep the site they started with.
func (s *Server) Swap(next *site.Site) {
	s.site.Store(next)
	s.hub.broadcast(reloadMessage)
	s.log.WithField("dir", next.Dir).Info("site reloaded")
}

// Clients reports the number of connected websocket clients.
func (s *Server) Clients() int {
	return s.hub.len()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("serving navigation")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
