package sessions

import (
	"context"

	"github.com/jrsteele09/go-oidc-session/store"
	"github.com/jrsteele09/go-oidc-session/token"
)

type localsContextKey struct{}

// Locals is the per-request state the binder hands to downstream stages.
type Locals struct {
	SessionID string
	Session   Session
	Store     store.Store
	Hasher    token.Hasher
	Generator token.Generator
}

// WithLocals returns a copy of ctx carrying locals.
func WithLocals(ctx context.Context, locals *Locals) context.Context {
	return context.WithValue(ctx, localsContextKey{}, locals)
}

// FromContext returns the locals bound by the binder, if any.
func FromContext(ctx context.Context) (*Locals, bool) {
	locals, ok := ctx.Value(localsContextKey{}).(*Locals)
	return locals, ok && locals != nil
}
