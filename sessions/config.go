package sessions

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/jrsteele09/go-oidc-session/token"
)

// Defaults for local development only. Production deployments must supply their own values.
const (
	DefaultCookieName = "session.id"
	DefaultExpireIn   = 86400
	DefaultSize       = 128
	DefaultSkipPath   = "/favicon.ico"

	// MinSize is the smallest accepted number of random bytes behind an identifier.
	MinSize = 128
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure *bool
}

// Config controls the session binder.
type Config struct {
	Cookie    CookieConfig
	ExpireIn  int // session lifetime in seconds
	Size      int // random bytes per session id
	Store     store.Store
	Hasher    token.Hasher
	Generator token.Generator

	// SkipPath is passed through without binding a session.
	SkipPath string
}

// DefaultConfig returns a fresh default configuration with its own in-memory store.
func DefaultConfig() Config {
	secure := false
	return Config{
		Cookie: CookieConfig{
			Name:   DefaultCookieName,
			Secure: &secure,
		},
		ExpireIn:  DefaultExpireIn,
		Size:      DefaultSize,
		Store:     store.NewMemoryStore(),
		Hasher:    token.NewBlake2bHasher(),
		Generator: token.NewRandomGenerator(),
		SkipPath:  DefaultSkipPath,
	}
}

// TTL is ExpireIn as a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.ExpireIn) * time.Second
}

// SecureCookie reports the configured secure flag, false when unset.
func (c Config) SecureCookie() bool {
	return c.Cookie.Secure != nil && *c.Cookie.Secure
}

// Validate returns every problem with c, or nil.
func (c Config) Validate() error {
	var errs *multierror.Error

	if c.Cookie.Name == "" {
		errs = multierror.Append(errs, errors.New("Cookie name is missing"))
	}
	if c.Cookie.Secure == nil {
		errs = multierror.Append(errs, errors.New("Cookie secure is missing"))
	}
	if c.ExpireIn <= 0 {
		errs = multierror.Append(errs, errors.New("expireIn must be a positive finite number (seconds)"))
	}
	if c.Size < MinSize {
		errs = multierror.Append(errs, errors.New("Size is not a number or is less than 128"))
	}
	if c.Generator == nil {
		errs = multierror.Append(errs, errors.New("Session generator is missing"))
	}
	if c.Hasher == nil {
		errs = multierror.Append(errs, errors.New("Session hasher is missing"))
	}
	if c.Store == nil {
		errs = multierror.Append(errs, errors.New("Session store is missing"))
	}

	return errs.ErrorOrNil()
}
