// Package server assembles the HTTP surface: routes, middleware chain, and
// server lifecycle.
package server

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	authhandler "namhatta-management/backend/internal/auth/handler"
	healthhandler "namhatta-management/backend/internal/health/handler"
	namhattahandler "namhatta-management/backend/internal/namhatta/handler"
	"namhatta-management/backend/internal/server/middleware"
)

// Deps carries the handlers and middleware the router wires together.
type Deps struct {
	Auth      *authhandler.Handler
	Namhattas *namhattahandler.Handler
	Health    *healthhandler.Handler

	Authenticator *middleware.Authenticator
	Authorizer    *middleware.Authorizer
	Telemetry     *middleware.Telemetry
}

// NewHandler builds the route table. Login, logout, and health are public;
// verify requires authentication; resource routes additionally pass the role
// policy. Telemetry and client-IP capture wrap everything.
func NewHandler(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", d.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", d.Auth.Logout)
	mux.Handle("GET /api/auth/verify", d.Authenticator.Wrap(http.HandlerFunc(d.Auth.Verify)))
	mux.HandleFunc("GET /api/health", d.Health.Check)

	authorized := func(h http.HandlerFunc) http.Handler {
		return d.Authenticator.Wrap(d.Authorizer.Wrap(h))
	}
	mux.Handle("GET /api/namhattas", authorized(d.Namhattas.List))

	var handler http.Handler = mux
	if d.Telemetry != nil {
		handler = d.Telemetry.Wrap(handler)
	}
	handler = middleware.WithClientIP(handler)
	return otelhttp.NewHandler(handler, "http.server")
}

// Server wraps http.Server with sane timeouts and graceful shutdown.
type Server struct {
	srv *http.Server
}

// New returns a Server listening on addr once Run is called.
func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}}
}

// Run serves until the listener fails. http.ErrServerClosed is returned after
// Shutdown and should be treated as a clean exit.
func (s *Server) Run() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
