package server

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"

	healthCheckKey = "healthz"
)

// PageData is shared by the HTML pages.
type PageData struct {
	AppName       string
	Authenticated bool
	Name          string
	Subject       string
	Scopes        []string
	ExpiresAt     string
	SignInPage    string
	SignInURL     string
	SignOutPage   string
}

// ProfileResponse is the JSON view of the signed-in identity.
type ProfileResponse struct {
	Subject      string    `json:"sub"`
	Name         string    `json:"name"`
	Scopes       []string  `json:"scopes"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	SessionState string    `json:"sessionState,omitempty"`
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

func identityFrom(r *http.Request) *sessions.Identity {
	locals, ok := sessions.FromContext(r.Context())
	if !ok {
		return nil
	}
	return locals.Session.Identity
}

func (s *Server) pageData(r *http.Request) PageData {
	oidc := s.OIDCConfig()
	data := PageData{
		AppName:     s.config.GetAppName(),
		SignInPage:  oidc.SignIn.Page,
		SignOutPage: oidc.SignOut.Page,
	}
	if identity := identityFrom(r); identity != nil {
		data.Authenticated = true
		data.Name = identity.DisplayName()
		data.Subject = identity.Subject()
		data.Scopes = identity.Scopes
		data.ExpiresAt = identity.AccessTokenExpiresAt.Format(time.RFC1123)
	}
	return data
}

func (s *Server) renderPage(w http.ResponseWriter, tmpl *template.Template, data PageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, tmpl, s.pageData(r))
	}
}

// SignInPageHandler renders the page that links to the sign-in endpoint.
// A redirect_uri query parameter is forwarded to the endpoint.
func (s *Server) SignInPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.SignInURL = s.OIDCConfig().SignIn.Endpoint
		if redirectURI := r.URL.Query().Get("redirect_uri"); redirectURI != "" {
			data.SignInURL += "?" + url.Values{"redirect_uri": {redirectURI}}.Encode()
		}
		s.renderPage(w, tmpl, data)
	}
}

func (s *Server) SignOutPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signout.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, tmpl, s.pageData(r))
	}
}

// ProfileHandler returns the signed-in identity as JSON, or 401 for anonymous sessions.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r)
		if identity == nil {
			w.Header().Set("Content-Type", contentTypeJSON)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthenticated"})
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		_ = json.NewEncoder(w).Encode(ProfileResponse{
			Subject:      identity.Subject(),
			Name:         identity.DisplayName(),
			Scopes:       identity.Scopes,
			TokenType:    identity.TokenType,
			ExpiresAt:    identity.AccessTokenExpiresAt,
			SessionState: identity.SessionState,
		})
	}
}

func (s *Server) FaviconHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthHandler reports whether the session store answers.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", contentTypeJSON)
		if _, err := s.store.Exists(ctx, healthCheckKey); err != nil {
			log.Err(err).Msg("Health check: session store unavailable")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
