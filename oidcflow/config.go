package oidcflow

import (
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jrsteele09/go-oidc-session/internal/utils"
	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/jrsteele09/go-oidc-session/token"
)

// Defaults for local development only. Issuer, client id, client secret and
// session lifetime must be supplied explicitly in production.
const (
	DefaultIssuer            = "https://invalid.keycloak.org/realms/master"
	DefaultClientID          = "invalid-client"
	DefaultClientSecret      = "invalid-secret"
	DefaultChallengeExpireIn = 300

	DefaultSignInPage      = "/account/signin"
	DefaultSignInEndpoint  = "/.oidc/signin"
	DefaultSignInCallback  = "/.oidc/signin/callback"
	DefaultSignOutPage     = "/account/signout"
	DefaultSignOutEndpoint = "/.oidc/signout"
	DefaultSignOutCallback = "/.oidc/signout/callback"
)

// ChallengeConfig toggles automatic challenges.
type ChallengeConfig struct {
	// SignIn redirects every unauthenticated request that is not one of the flow's
	// own paths into the sign-in endpoint.
	SignIn *bool
}

// PathConfig is the set of paths belonging to one flow.
type PathConfig struct {
	Page     string
	Endpoint string
	Callback string
}

// Config is the complete, validated middleware configuration.
type Config struct {
	sessions.Config

	Challenge ChallengeConfig
	SignIn    PathConfig
	SignOut   PathConfig

	Issuer       string
	ClientID     string
	ClientSecret string

	// ChallengeExpireIn bounds how long an abandoned sign-in challenge is kept, in seconds.
	ChallengeExpireIn int

	// Provider talks to the identity provider. When nil a Keycloak provider is
	// built from Issuer, ClientID and ClientSecret.
	Provider Provider

	// HTTPClient is used by the default provider.
	HTTPClient *http.Client
}

// DefaultConfig returns a fresh default configuration. Every call builds new
// store, hasher and generator instances so middleware instances never share state.
func DefaultConfig() Config {
	automatic := false
	return Config{
		Config:    sessions.DefaultConfig(),
		Challenge: ChallengeConfig{SignIn: &automatic},
		SignIn: PathConfig{
			Page:     DefaultSignInPage,
			Endpoint: DefaultSignInEndpoint,
			Callback: DefaultSignInCallback,
		},
		SignOut: PathConfig{
			Page:     DefaultSignOutPage,
			Endpoint: DefaultSignOutEndpoint,
			Callback: DefaultSignOutCallback,
		},
		Issuer:            DefaultIssuer,
		ClientID:          DefaultClientID,
		ClientSecret:      DefaultClientSecret,
		ChallengeExpireIn: DefaultChallengeExpireIn,
	}
}

// AutomaticSignIn reports whether unmatched anonymous requests are challenged.
func (c Config) AutomaticSignIn() bool {
	return c.Challenge.SignIn != nil && *c.Challenge.SignIn
}

// ChallengeTTL is ChallengeExpireIn as a duration.
func (c Config) ChallengeTTL() time.Duration {
	return time.Duration(c.ChallengeExpireIn) * time.Second
}

// CookieOptions overrides cookie settings.
type CookieOptions struct {
	Name   *string
	Secure *bool
}

// ChallengeOptions overrides automatic challenge settings.
type ChallengeOptions struct {
	SignIn *bool
}

// PathOptions overrides individual flow paths.
type PathOptions struct {
	Page     *string
	Endpoint *string
	Callback *string
}

// Options are caller overrides. Nil fields keep the default.
type Options struct {
	Cookie    *CookieOptions
	ExpireIn  *int
	Size      *int
	Store     store.Store
	Hasher    token.Hasher
	Generator token.Generator

	Challenge *ChallengeOptions
	SignIn    *PathOptions
	SignOut   *PathOptions

	Issuer       *string
	ClientID     *string
	ClientSecret *string

	ChallengeExpireIn *int
	SkipPath          *string
	Provider          Provider
	HTTPClient        *http.Client
}

// Merge applies opts onto base leaf by leaf and returns the result. base is not modified.
func Merge(base Config, opts Options) Config {
	cfg := base

	if opts.Cookie != nil {
		if opts.Cookie.Name != nil {
			cfg.Cookie.Name = *opts.Cookie.Name
		}
		if opts.Cookie.Secure != nil {
			cfg.Cookie.Secure = utils.Ptr(*opts.Cookie.Secure)
		}
	}
	utils.Override(&cfg.ExpireIn, opts.ExpireIn)
	utils.Override(&cfg.Size, opts.Size)
	utils.Override(&cfg.SkipPath, opts.SkipPath)
	if opts.Store != nil {
		cfg.Store = opts.Store
	}
	if opts.Hasher != nil {
		cfg.Hasher = opts.Hasher
	}
	if opts.Generator != nil {
		cfg.Generator = opts.Generator
	}

	if opts.Challenge != nil && opts.Challenge.SignIn != nil {
		cfg.Challenge.SignIn = utils.Ptr(*opts.Challenge.SignIn)
	}
	mergePaths(&cfg.SignIn, opts.SignIn)
	mergePaths(&cfg.SignOut, opts.SignOut)

	utils.Override(&cfg.Issuer, opts.Issuer)
	utils.Override(&cfg.ClientID, opts.ClientID)
	utils.Override(&cfg.ClientSecret, opts.ClientSecret)
	utils.Override(&cfg.ChallengeExpireIn, opts.ChallengeExpireIn)

	if opts.Provider != nil {
		cfg.Provider = opts.Provider
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return cfg
}

func mergePaths(dst *PathConfig, src *PathOptions) {
	if src == nil {
		return
	}
	utils.Override(&dst.Page, src.Page)
	utils.Override(&dst.Endpoint, src.Endpoint)
	utils.Override(&dst.Callback, src.Callback)
}

// Validate returns every problem with cfg aggregated into one error, or nil.
func Validate(cfg Config) error {
	var errs *multierror.Error

	errs = multierror.Append(errs, cfg.Config.Validate())

	if cfg.Challenge.SignIn == nil {
		errs = multierror.Append(errs, errors.New("Signin challenge is missing"))
	}

	if cfg.SignIn.Endpoint == "" {
		errs = multierror.Append(errs, errors.New("Signin endpoint is missing"))
	}
	if cfg.SignIn.Page == "" {
		errs = multierror.Append(errs, errors.New("Signin page is missing"))
	}
	if cfg.SignIn.Callback == "" {
		errs = multierror.Append(errs, errors.New("Signin callback is missing"))
	}

	if cfg.SignOut.Page == "" {
		errs = multierror.Append(errs, errors.New("Signout page is missing"))
	}
	if cfg.SignOut.Endpoint == "" {
		errs = multierror.Append(errs, errors.New("Signout endpoint is missing"))
	}
	if cfg.SignOut.Callback == "" {
		errs = multierror.Append(errs, errors.New("Signout callback is missing"))
	}

	if cfg.Issuer == "" {
		errs = multierror.Append(errs, errors.New("Issuer is missing"))
	}
	if cfg.ClientID == "" {
		errs = multierror.Append(errs, errors.New("Client id is missing"))
	}
	if cfg.ClientSecret == "" {
		errs = multierror.Append(errs, errors.New("Client secret is missing"))
	}

	if cfg.ChallengeExpireIn <= 0 {
		errs = multierror.Append(errs, errors.New("challengeExpireIn must be a positive number (seconds)"))
	}

	return errs.ErrorOrNil()
}
