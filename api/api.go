// Package api provides the HTTP API for the checkout backend.
//
// The API exposes a single business route: checkout session issuance for the
// mobile client. The client holds a bearer token obtained from the hosted
// identity provider and attaches it to the request; the returned session URL
// is where the client navigates the end user to pay.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pulsegram/checkout-backend/auth"
	"github.com/pulsegram/checkout-backend/errors"
	"github.com/pulsegram/checkout-backend/stripe"
)

// Config collects the API server dependencies. All collaborators are injected
// explicitly; the API holds no process-wide state.
type Config struct {
	Host   string
	Port   int
	Auth   *auth.Client
	Stripe *stripe.Service
}

// API type represents the API HTTP server.
type API struct {
	auth   *auth.Client
	stripe *stripe.Service
	host   string
	port   int
	router *chi.Mux
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		auth:   conf.Auth,
		stripe: conf.Stripe,
		host:   conf.Host,
		port:   conf.Port,
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatal().Err(err).Msg("failed to start the API server")
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	r := chi.NewRouter()
	// Every response carries the permissive CORS headers the mobile client
	// expects, so the middleware goes first.
	r.Use(a.corsMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.Timeout(45 * time.Second))

	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(".")); err != nil {
			log.Warn().Err(err).Msg("failed to write ping response")
		}
	})
	r.Handle(metricsEndpoint, promhttp.Handler())

	log.Info().Str("method", "POST").Str("path", checkoutEndpoint).Msg("new route")
	r.Post(checkoutEndpoint, a.createCheckoutSessionHandler)

	// Non-POST on the checkout route (and everywhere else) is rejected with
	// the fixed 405 body. OPTIONS never reaches this point, the CORS
	// middleware short-circuits it.
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.ErrMethodNotAllowed.Write(w)
	})

	a.router = r
	return r
}
