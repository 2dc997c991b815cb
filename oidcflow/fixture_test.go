package oidcflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-session/internal/utils"
	"github.com/jrsteele09/go-oidc-session/oidcflow"
	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer       = "https://idp.example/realms/x"
	testClientID     = "test-client"
	testClientSecret = "test-secret"
	testOrigin       = "http://example.com"
	testCode         = "auth-code-1"
	testSessionState = "keycloak-session-state"
)

// stubProvider records calls and answers with canned results.
type stubProvider struct {
	mu sync.Mutex

	authorizeCalls int
	lastState      string
	lastVerifier   string
	lastScopes     []string
	lastRedirect   string

	exchangeCalls    int
	exchangeCode     string
	exchangeVerifier string
	exchangeRedirect string

	tokens      *oidcflow.Tokens
	exchangeErr error
}

func (p *stubProvider) AuthorizationURL(state, codeVerifier string, scopes []string, redirectURI string) (*url.URL, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authorizeCalls++
	p.lastState = state
	p.lastVerifier = codeVerifier
	p.lastScopes = scopes
	p.lastRedirect = redirectURI
	return url.Parse("https://idp.example/realms/x/protocol/openid-connect/auth?state=" + url.QueryEscape(state))
}

func (p *stubProvider) Exchange(_ context.Context, code, codeVerifier, redirectURI string) (*oidcflow.Tokens, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchangeCalls++
	p.exchangeCode = code
	p.exchangeVerifier = codeVerifier
	p.exchangeRedirect = redirectURI
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.tokens, nil
}

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return s
}

func testTokens(t *testing.T) *oidcflow.Tokens {
	t.Helper()
	return &oidcflow.Tokens{
		AccessToken:  signedJWT(t, jwt.MapClaims{"sub": "user-1", "iss": testIssuer, "typ": "Bearer"}),
		RefreshToken: signedJWT(t, jwt.MapClaims{"sub": "user-1", "typ": "Refresh"}),
		IDToken:      signedJWT(t, jwt.MapClaims{"sub": "user-1", "name": "Jane Doe", "iss": testIssuer}),
		TokenType:    "Bearer",
		Scopes:       []string{"openid", "profile"},
		ExpiresIn:    300,
	}
}

// flowFixture wires the middleware around an application handler that counts calls.
type flowFixture struct {
	store      *store.MemoryStore
	provider   *stubProvider
	middleware *oidcflow.Middleware
	handler    http.Handler
	appCalls   int
}

func setupFlow(t *testing.T, mutate ...func(*oidcflow.Options)) *flowFixture {
	t.Helper()

	f := &flowFixture{
		store:    store.NewMemoryStore(),
		provider: &stubProvider{tokens: testTokens(t)},
	}
	opts := oidcflow.Options{
		ExpireIn:     utils.Ptr(300),
		Size:         utils.Ptr(128),
		Store:        f.store,
		Issuer:       utils.Ptr(testIssuer),
		ClientID:     utils.Ptr(testClientID),
		ClientSecret: utils.Ptr(testClientSecret),
		Provider:     f.provider,
	}
	for _, m := range mutate {
		m(&opts)
	}

	mw, err := oidcflow.New(opts)
	require.NoError(t, err)
	f.middleware = mw
	f.handler = mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.appCalls++
		w.WriteHeader(http.StatusOK)
	}))
	return f
}

func (f *flowFixture) do(method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// establishSession performs the first-visit round trip and returns the session cookie.
func (f *flowFixture) establishSession(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessions.DefaultCookieName {
			return &http.Cookie{Name: c.Name, Value: c.Value}
		}
	}
	require.FailNow(t, "no session cookie issued")
	return nil
}

// startSignIn hits the sign-in endpoint and returns the challenge id it created.
func (f *flowFixture) startSignIn(t *testing.T, cookie *http.Cookie, target string) string {
	t.Helper()
	rec := f.do(http.MethodGet, target, cookie)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	redirect, err := url.Parse(f.provider.lastRedirect)
	require.NoError(t, err)
	challengeID := redirect.Query().Get("challenge")
	require.NotEmpty(t, challengeID)
	return challengeID
}

func (f *flowFixture) storedChallenge(t *testing.T, challengeID string) (oidcflow.Challenge, bool) {
	t.Helper()
	raw, ok, err := f.store.GetSingle(context.Background(), oidcflow.ChallengeKey(challengeID))
	require.NoError(t, err)
	if !ok {
		return oidcflow.Challenge{}, false
	}
	var challenge oidcflow.Challenge
	require.NoError(t, json.Unmarshal([]byte(raw), &challenge))
	return challenge, true
}

func (f *flowFixture) identity(t *testing.T, cookie *http.Cookie) (*string, *sessions.Identity) {
	t.Helper()
	values, err := f.store.GetMultiple(context.Background(), sessions.Key(cookie.Value), "identity")
	require.NoError(t, err)
	identity, _ := sessions.ParseIdentity(values[0])
	return values[0], identity
}

func callbackURL(challengeID, state, iss string) string {
	q := url.Values{}
	q.Set("challenge", challengeID)
	q.Set("state", state)
	q.Set("session_state", testSessionState)
	q.Set("iss", iss)
	q.Set("code", testCode)
	return oidcflow.DefaultSignInCallback + "?" + q.Encode()
}

func newRequestWithHeader(method, target, name, value string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(name, value)
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
