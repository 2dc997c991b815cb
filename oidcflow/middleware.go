package oidcflow

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/rs/zerolog/log"
)

// Middleware is the installed pipeline: the session binder followed by the
// flow controller.
type Middleware struct {
	cfg        Config
	binder     *sessions.Binder
	controller *Controller
}

// New merges opts onto a fresh default configuration and builds the middleware.
// An invalid configuration returns an error and no middleware.
func New(opts Options) (*Middleware, error) {
	return NewFromConfig(Merge(DefaultConfig(), opts))
}

// NewFromConfig builds the middleware from a complete configuration.
func NewFromConfig(cfg Config) (*Middleware, error) {
	if err := Validate(cfg); err != nil {
		log.Error().Err(err).Msg("Invalid oidc config")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	if cfg.Provider == nil {
		cfg.Provider = NewKeycloakProvider(cfg.Issuer, cfg.ClientID, cfg.ClientSecret, WithHTTPClient(cfg.HTTPClient))
	}

	binder, err := sessions.NewBinder(cfg.Config)
	if err != nil {
		return nil, err
	}

	return &Middleware{
		cfg:        cfg,
		binder:     binder,
		controller: NewController(cfg, cfg.Provider),
	}, nil
}

// Config returns the effective configuration.
func (m *Middleware) Config() Config {
	return m.cfg
}

// Handlers returns the stages in the order they must run.
func (m *Middleware) Handlers() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		m.binder.Middleware,
		m.controller.Middleware,
	}
}

// Wrap installs the stages in front of next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	var h http.HandlerFunc = next.ServeHTTP
	stages := m.Handlers()
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}
	return h
}
