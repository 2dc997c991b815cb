package sessions

import (
	"context"
	"strconv"
	"time"

	"github.com/jrsteele09/go-oidc-session/store"
)

// Record field names and key prefix of a session hash.
const (
	KeyPrefix     = "session:"
	FieldIdentity = "identity"
	FieldCreated  = "created"
)

// Key returns the store key of the session record for sessionID.
func Key(sessionID string) string {
	return KeyPrefix + sessionID
}

// Session is the materialised session record bound to a request.
type Session struct {
	Identity *Identity // nil until sign-in succeeds
	Created  time.Time // zero when the stored value is unreadable
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.Identity != nil && s.Identity.Authenticated
}

// Load reads the session record for sessionID. An unparsable identity is
// treated as anonymous; store failures are returned.
func Load(ctx context.Context, st store.Store, sessionID string) (Session, error) {
	values, err := st.GetMultiple(ctx, Key(sessionID), FieldIdentity, FieldCreated)
	if err != nil {
		return Session{}, err
	}

	var session Session
	if identity, err := ParseIdentity(values[0]); err == nil {
		session.Identity = identity
	}
	if values[1] != nil {
		if ms, err := strconv.ParseInt(*values[1], 10, 64); err == nil {
			session.Created = time.UnixMilli(ms)
		}
	}
	return session, nil
}

// LoadIdentity reads only the identity field. Unreadable values are anonymous.
func LoadIdentity(ctx context.Context, st store.Store, sessionID string) (*Identity, error) {
	values, err := st.GetMultiple(ctx, Key(sessionID), FieldIdentity)
	if err != nil {
		return nil, err
	}
	identity, err := ParseIdentity(values[0])
	if err != nil {
		return nil, nil
	}
	return identity, nil
}

// SaveIdentity overwrites the identity field of the session record.
func SaveIdentity(ctx context.Context, st store.Store, sessionID string, identity *Identity) error {
	encoded, err := MarshalIdentity(identity)
	if err != nil {
		return err
	}
	return st.SetMultiple(ctx, Key(sessionID), FieldIdentity, encoded)
}

// create writes a fresh anonymous record and applies its TTL.
func create(ctx context.Context, st store.Store, sessionID string, now time.Time, ttl time.Duration) error {
	key := Key(sessionID)
	if err := st.SetMultiple(ctx, key,
		FieldIdentity, "null",
		FieldCreated, strconv.FormatInt(now.UnixMilli(), 10),
	); err != nil {
		return err
	}
	return st.Expire(ctx, key, ttl)
}
