package oidcflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-oidc-session/internal/utils"
	"golang.org/x/oauth2"
)

// Provider is the identity provider client used by the sign-in flow.
type Provider interface {
	// AuthorizationURL builds the provider URL the user agent is sent to.
	AuthorizationURL(state, codeVerifier string, scopes []string, redirectURI string) (*url.URL, error)

	// Exchange trades an authorization code for tokens. redirectURI must equal
	// the one used to build the authorization URL. Failures are *ProtocolError
	// or *TransportError.
	Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*Tokens, error)
}

// Tokens is the result of a successful code exchange.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	Scopes       []string
	Expiry       time.Time
	ExpiresIn    int64 // seconds, as reported by the provider
}

// ProtocolError is an OAuth2 error response, or a response that failed validation.
type ProtocolError struct {
	Code        string
	Description string
	StatusCode  int
	Err         error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("oauth2 protocol error: %s %s", e.Code, e.Description)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// TransportError is a failure to reach the provider or read its response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oauth2 transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func classifyExchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		pe := &ProtocolError{Code: re.ErrorCode, Description: re.ErrorDescription, Err: err}
		if re.Response != nil {
			pe.StatusCode = re.Response.StatusCode
		}
		return pe
	}
	return &TransportError{Err: err}
}

// ProviderOption customises an OAuth2Provider.
type ProviderOption func(*OAuth2Provider)

// WithHTTPClient sets the client used for token and discovery requests.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *OAuth2Provider) {
		if client != nil {
			p.client = client
		}
	}
}

// OAuth2Provider implements Provider with golang.org/x/oauth2 and S256 PKCE.
// ID tokens are verified when the provider was discovered.
type OAuth2Provider struct {
	clientID     string
	clientSecret string
	endpoint     oauth2.Endpoint
	client       *http.Client
	verifier     *oidc.IDTokenVerifier
}

var _ Provider = (*OAuth2Provider)(nil)

func newOAuth2Provider(clientID, clientSecret string, endpoint oauth2.Endpoint, opts []ProviderOption) *OAuth2Provider {
	p := &OAuth2Provider{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     endpoint,
		client:       cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewKeycloakProvider targets the standard Keycloak realm endpoints under issuer,
// e.g. https://idp.example/realms/x.
func NewKeycloakProvider(issuer, clientID, clientSecret string, opts ...ProviderOption) *OAuth2Provider {
	base := strings.TrimSuffix(issuer, "/")
	return newOAuth2Provider(clientID, clientSecret, oauth2.Endpoint{
		AuthURL:   base + "/protocol/openid-connect/auth",
		TokenURL:  base + "/protocol/openid-connect/token",
		AuthStyle: oauth2.AuthStyleInHeader,
	}, opts)
}

// DiscoverProvider reads the issuer's OpenID configuration and verifies returned
// ID tokens against its published keys.
func DiscoverProvider(ctx context.Context, issuer, clientID, clientSecret string, opts ...ProviderOption) (*OAuth2Provider, error) {
	p := newOAuth2Provider(clientID, clientSecret, oauth2.Endpoint{}, opts)

	discovered, err := oidc.NewProvider(oidc.ClientContext(ctx, p.client), issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider %q: %w", issuer, err)
	}
	p.endpoint = discovered.Endpoint()
	p.verifier = discovered.Verifier(&oidc.Config{ClientID: clientID})
	return p, nil
}

func (p *OAuth2Provider) config(redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		Endpoint:     p.endpoint,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
	}
}

func (p *OAuth2Provider) AuthorizationURL(state, codeVerifier string, scopes []string, redirectURI string) (*url.URL, error) {
	raw := p.config(redirectURI, scopes).AuthCodeURL(state, oauth2.S256ChallengeOption(codeVerifier))
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid authorization url: %w", err)
	}
	return u, nil
}

func (p *OAuth2Provider) Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	tok, err := p.config(redirectURI, nil).Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, classifyExchangeError(err)
	}

	tokens := &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Scopes:       utils.ScopeList(tok.Extra("scope")),
		Expiry:       tok.Expiry,
		ExpiresIn:    tok.ExpiresIn,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		tokens.IDToken = idToken
	}
	if tokens.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		tokens.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}

	if p.verifier != nil && tokens.IDToken != "" {
		if _, err := p.verifier.Verify(oidc.ClientContext(ctx, p.client), tokens.IDToken); err != nil {
			return nil, &ProtocolError{Code: "invalid_id_token", Description: err.Error(), Err: err}
		}
	}
	return tokens, nil
}
