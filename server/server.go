package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oidc-session/internal/config"
	"github.com/jrsteele09/go-oidc-session/internal/utils"
	"github.com/jrsteele09/go-oidc-session/oidcflow"
	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	store   store.Store
	oidc    *oidcflow.Middleware
	handler http.Handler
}

// New builds the application. provider may be nil, in which case the Keycloak
// endpoints under the configured issuer are used.
func New(cfg config.Config, st store.Store, provider oidcflow.Provider) (*Server, error) {
	oidc, err := oidcflow.New(oidcOptions(cfg, st, provider))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create oidc middleware: %w", err)
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		store:  st,
		oidc:   oidc,
	}

	s.initRoutes()
	s.logRoutes()

	// Health checks bypass sessions. Every other request, including the flow
	// endpoints that have no route of their own, passes through the session
	// binder and the flow controller.
	root := http.NewServeMux()
	root.HandleFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))
	root.HandleFunc("/", ChainMiddleware(s.mux.ServeHTTP, s.HTMLMiddleWare(s.oidc.Handlers()...)...))
	s.handler = root
	return s, nil
}

func oidcOptions(cfg config.Config, st store.Store, provider oidcflow.Provider) oidcflow.Options {
	return oidcflow.Options{
		Cookie:            &oidcflow.CookieOptions{Secure: utils.Ptr(cfg.GetCookieSecure())},
		ExpireIn:          utils.Ptr(cfg.GetSessionExpireIn()),
		Store:             st,
		Challenge:         &oidcflow.ChallengeOptions{SignIn: utils.Ptr(cfg.GetAutomaticSignIn())},
		Issuer:            utils.Ptr(cfg.GetIssuer()),
		ClientID:          utils.Ptr(cfg.GetClientID()),
		ClientSecret:      utils.Ptr(cfg.GetClientSecret()),
		ChallengeExpireIn: utils.Ptr(cfg.GetChallengeExpireIn()),
		Provider:          provider,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// OIDCConfig is the effective flow configuration, paths included.
func (s *Server) OIDCConfig() oidcflow.Config {
	return s.oidc.Config()
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
