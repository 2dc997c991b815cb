package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-oidc-session/internal/config"
	"github.com/jrsteele09/go-oidc-session/oidcflow"
	"github.com/jrsteele09/go-oidc-session/server"
	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/stretchr/testify/require"
)

type nopProvider struct{}

func (nopProvider) AuthorizationURL(state, _ string, _ []string, _ string) (*url.URL, error) {
	return url.Parse("https://idp.example/auth?state=" + state)
}

func (nopProvider) Exchange(context.Context, string, string, string) (*oidcflow.Tokens, error) {
	return nil, &oidcflow.TransportError{}
}

type fixture struct {
	store  *store.MemoryStore
	server *server.Server
}

func setupServer(t *testing.T, env map[string]string) *fixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "secret")
	for k, v := range env {
		t.Setenv(k, v)
	}

	f := &fixture{store: store.NewMemoryStore()}
	s, err := server.New(config.New(), f.store, nopProvider{})
	require.NoError(t, err)
	f.server = s
	return f
}

func (f *fixture) do(method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) session(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessions.DefaultCookieName {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	require.FailNow(t, "no session cookie")
	return nil
}

func (f *fixture) signIn(t *testing.T, cookie *http.Cookie) {
	t.Helper()
	require.NoError(t, sessions.SaveIdentity(context.Background(), f.store, cookie.Value, &sessions.Identity{
		Authenticated:        true,
		TokenType:            "Bearer",
		Scopes:               []string{"openid", "profile"},
		AccessTokenExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		IDToken:              sessions.Claims{"sub": "user-1", "name": "Jane Doe"},
	}))
}

func TestServer_AnonymousIsChallenged(t *testing.T) {
	f := setupServer(t, nil)
	cookie := f.session(t)

	rec := f.do(http.MethodGet, "/", cookie)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	challenge := rec.Header().Get("Location")
	require.Equal(t, oidcflow.DefaultSignInEndpoint+"?redirect_uri="+url.QueryEscape("http://example.com/"), challenge)

	t.Run("sign-in endpoint goes to the provider", func(t *testing.T) {
		rec := f.do(http.MethodGet, challenge, cookie)
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), "https://idp.example/auth")
	})

	t.Run("sign-in page is served", func(t *testing.T) {
		rec := f.do(http.MethodGet, oidcflow.DefaultSignInPage+"?redirect_uri=/x", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), oidcflow.DefaultSignInEndpoint+"?redirect_uri=%2Fx")
	})
}

func TestServer_AuthenticatedPages(t *testing.T) {
	f := setupServer(t, nil)
	cookie := f.session(t)
	f.signIn(t, cookie)

	rec := f.do(http.MethodGet, "/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Signed in as <strong>Jane Doe</strong>")
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = f.do(http.MethodGet, server.RouteProfile, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile server.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "user-1", profile.Subject)
	require.Equal(t, "Jane Doe", profile.Name)
	require.Equal(t, []string{"openid", "profile"}, profile.Scopes)
}

func TestServer_ProfileWithoutChallenge(t *testing.T) {
	f := setupServer(t, map[string]string{"OIDC_CHALLENGE_SIGNIN": "false"})
	cookie := f.session(t)

	rec := f.do(http.MethodGet, server.RouteProfile, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "You are not signed in.")
}

func TestServer_RoutesOutsideSession(t *testing.T) {
	f := setupServer(t, nil)

	rec := f.do(http.MethodGet, server.RouteFavicon, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	rec = f.do(http.MethodGet, server.RouteHealth, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_InvalidConfig(t *testing.T) {
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "")
	_, err := server.New(config.New(), store.NewMemoryStore(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Client secret is missing")
}

func TestBootstrap(t *testing.T) {
	t.Run("memory store by default", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "")
		t.Setenv("OIDC_DISCOVERY", "")
		deps, err := server.Bootstrap(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &store.MemoryStore{}, deps.Store)
		require.Nil(t, deps.Provider)
		require.NoError(t, deps.Close())
	})

	t.Run("redis store when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		t.Setenv("REDIS_ADDR", mr.Addr())
		t.Setenv("OIDC_DISCOVERY", "")
		deps, err := server.Bootstrap(context.Background(), config.New())
		require.NoError(t, err)
		require.IsType(t, &store.RedisStore{}, deps.Store)

		require.NoError(t, deps.Store.SetSingle(context.Background(), "k", "v"))
		require.True(t, mr.Exists("oidc:k"))
		require.NoError(t, deps.Close())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		t.Setenv("REDIS_ADDR", addr)
		_, err := server.Bootstrap(context.Background(), config.New())
		require.Error(t, err)
	})

	t.Run("discovery failure", func(t *testing.T) {
		idp := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(idp.Close)
		t.Setenv("REDIS_ADDR", "")
		t.Setenv("OIDC_DISCOVERY", "true")
		t.Setenv("KEYCLOAK_ISSUER", idp.URL)
		_, err := server.Bootstrap(context.Background(), config.New())
		require.Error(t, err)
	})
}
