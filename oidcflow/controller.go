package oidcflow

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/rs/zerolog/log"
)

type route int

const (
	routePassThrough route = iota
	routeSignIn
	routeSignInCallback
)

var routeNames = map[route]string{
	routePassThrough:    "pass-through",
	routeSignIn:         "sign-in",
	routeSignInCallback: "sign-in callback",
}

func (r route) String() string {
	return routeNames[r]
}

// Controller lets only authenticated sessions through to the application, except
// for the sign-in and sign-out paths it owns.
type Controller struct {
	cfg      Config
	provider Provider
	routes   map[string]route
}

// NewController builds the route table for cfg. cfg is assumed valid and
// provider non-nil.
func NewController(cfg Config, provider Provider) *Controller {
	c := &Controller{
		cfg:      cfg,
		provider: provider,
		routes:   make(map[string]route),
	}

	// Earlier entries win when paths collide.
	for _, entry := range []struct {
		path  string
		route route
	}{
		{cfg.SkipPath, routePassThrough},
		{cfg.SignIn.Page, routePassThrough},
		{cfg.SignIn.Endpoint, routeSignIn},
		{cfg.SignIn.Callback, routeSignInCallback},
		{cfg.SignOut.Page, routePassThrough},
		{cfg.SignOut.Endpoint, routePassThrough},
		{cfg.SignOut.Callback, routePassThrough},
	} {
		if entry.path == "" {
			continue
		}
		if _, exists := c.routes[entry.path]; !exists {
			c.routes[entry.path] = entry.route
		}
	}
	return c
}

// Middleware dispatches anonymous requests into the sign-in flow.
func (c *Controller) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locals, ok := sessions.FromContext(r.Context())
		if !ok || locals.SessionID == "" {
			next(w, r)
			return
		}

		identity, err := sessions.LoadIdentity(r.Context(), locals.Store, locals.SessionID)
		if err != nil {
			internalError(w, r, err, "Failed to read session identity")
			return
		}
		if identity != nil {
			next(w, r)
			return
		}

		if rt, matched := c.routes[r.URL.Path]; matched {
			log.Debug().Str("path", r.URL.Path).Stringer("route", rt).Msg("OIDC route matched")
			switch rt {
			case routeSignIn:
				c.signIn(w, r, locals)
			case routeSignInCallback:
				c.signInCallback(w, r, locals)
			default:
				next(w, r)
			}
			return
		}

		if c.cfg.AutomaticSignIn() {
			location := c.cfg.SignIn.Endpoint + "?redirect_uri=" + url.QueryEscape(requestURL(r))
			redirectTemporary(w, location)
			return
		}

		next(w, r)
	}
}
