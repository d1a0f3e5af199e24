package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler serves a group of routes. Routes are [http.ServeMux] patterns including the method,
// e.g. "GET /v1/collections/{collection}/documents".
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers handlers and applies middleware.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// Options configures [New].
type Options struct {
	Store    remote.DocumentStore
	Secret   []byte
	TokenTTL time.Duration
	Logger   *log.Logger
	Now      func() time.Time
}

// Server is the document API: the remote half of the cache-backed store.
type Server struct {
	router *BasicRouter
	logger *log.Logger
}

// New assembles the document API on a [BasicRouter].
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.Join(shared.ErrInvalidInput, errors.New("server needs a document store"))
	}
	if len(opts.Secret) == 0 {
		return nil, errors.Join(shared.ErrInvalidConfig, errors.New("server needs a signing secret"))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := shared.WithLogger(opts.Logger, "component", "server")

	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))
	router.Handle(http.MethodGet, "/healthz", Health(opts.Store))
	router.Handler(NewAnonymousHandler(opts.Secret, opts.TokenTTL, opts.Now, logger))
	router.Handler(NewDocumentHandler(opts.Store, opts.Secret, logger))

	return &Server{router: router, logger: logger}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
