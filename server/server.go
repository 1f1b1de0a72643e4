// Package server wires the gateway's HTTP surface: the credential CRUD
// endpoints, the service catalog, and the per-service dispatch routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/coconup/nomadpi-services-api/command"
	"github.com/coconup/nomadpi-services-api/core"
	"github.com/coconup/nomadpi-services-api/query"
)

type Server struct {
	cfg    core.HTTPConfig
	logger core.Logger

	upsertCommand *command.UpsertCredentialCommand
	updateCommand *command.UpdateCredentialCommand
	deleteCommand *command.DeleteCredentialCommand

	listCredentials *query.ListCredentialsQuery
	listServices    *query.ListServicesQuery
	getManifest     *query.GetManifestQuery

	dispatcher *core.Dispatcher

	router     chi.Router
	httpServer *http.Server
}

type Option func(*Server)

func WithLogger(logger core.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(
	cfg core.HTTPConfig,
	vault core.CredentialVault,
	manifests core.ManifestStore,
	dispatcher *core.Dispatcher,
	opts ...Option,
) (*Server, error) {
	if vault == nil {
		return nil, fmt.Errorf("server: credential vault is required")
	}
	if manifests == nil {
		return nil, fmt.Errorf("server: manifest store is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("server: dispatcher is required")
	}
	if len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("server: allowed origins are required")
	}

	s := &Server{
		cfg:    cfg,
		logger: glog.Nop(),

		upsertCommand: command.NewUpsertCredentialCommand(vault),
		updateCommand: command.NewUpdateCredentialCommand(vault),
		deleteCommand: command.NewDeleteCredentialCommand(vault),

		listCredentials: query.NewListCredentialsQuery(vault),
		listServices:    query.NewListServicesQuery(manifests),
		getManifest:     query.NewGetManifestQuery(manifests),

		dispatcher: dispatcher,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(corsMiddleware(s.cfg.AllowedOrigins))

	r.Get("/credentials", s.handleListCredentials)
	r.Post("/credentials", s.handleCreateCredential)
	r.Put("/credentials/{id}", s.handleUpdateCredential)
	r.Delete("/credentials/{id}", s.handleDeleteCredential)

	r.Get("/services", s.handleListServices)
	r.Get("/services/{serviceID}", s.handleGetService)
	r.HandleFunc("/services/{serviceID}/*", s.handleDispatch)

	return r
}

func (s *Server) Router() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

func (s *Server) ListenAndServe() error {
	if s == nil || s.httpServer == nil {
		return fmt.Errorf("server: not configured")
	}
	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the listener. Safe to call
// before or after ListenAndServe.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
