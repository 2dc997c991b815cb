package sessions

import (
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
	"github.com/jrsteele09/go-oidc-session/token"
	"github.com/rs/zerolog/log"
)

// Binder guarantees that every request reaching the next handler has a session id
// and a session record in the store.
type Binder struct {
	cfg Config
	now func() time.Time
}

// NewBinder validates cfg and returns a binder for it.
func NewBinder(cfg Config) (*Binder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidSessionConfig, err)
	}
	return &Binder{cfg: cfg, now: time.Now}, nil
}

// Config returns the configuration the binder was built with.
func (b *Binder) Config() Config {
	return b.cfg
}

// Middleware binds the session and then calls next, or answers the request itself
// when a new session had to be created.
func (b *Binder) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == b.cfg.SkipPath {
			next(w, r)
			return
		}

		ctx := r.Context()
		locals := &Locals{
			Store:     b.cfg.Store,
			Hasher:    b.cfg.Hasher,
			Generator: b.cfg.Generator,
		}

		if cookie, err := r.Cookie(b.cfg.Cookie.Name); err == nil && cookie.Value != "" {
			exists, err := b.cfg.Store.Exists(ctx, Key(cookie.Value))
			if err != nil {
				internalError(w, r, err, "Failed to check session")
				return
			}
			if exists {
				session, err := Load(ctx, b.cfg.Store, cookie.Value)
				if err != nil {
					internalError(w, r, err, "Failed to load session")
					return
				}
				locals.SessionID = cookie.Value
				locals.Session = session
				next(w, r.WithContext(WithLocals(ctx, locals)))
				return
			}
		}

		sessionID, err := token.NewID(b.cfg.Generator, b.cfg.Hasher, b.cfg.Size)
		if err != nil {
			internalError(w, r, err, "Failed to generate session id")
			return
		}

		now := b.now()
		if err := create(ctx, b.cfg.Store, sessionID, now, b.cfg.TTL()); err != nil {
			internalError(w, r, err, "Failed to create session")
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		http.SetCookie(w, &http.Cookie{
			Name:     b.cfg.Cookie.Name,
			Value:    sessionID,
			Path:     "/",
			Expires:  now.Add(b.cfg.TTL()),
			Secure:   b.cfg.SecureCookie(),
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		// The browser only sends the new cookie on its next request.
		if r.Method == http.MethodGet {
			http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
			return
		}

		// Mutations need a session established by an earlier GET.
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(msg)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
