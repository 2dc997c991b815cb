package sessions

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
)

// Claims is a decoded JWT payload.
type Claims map[string]any

// String returns the claim as a string, or "" when absent or not a string.
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// Identity is the token bundle persisted into a session after a successful sign-in.
// A nil *Identity is an anonymous session.
type Identity struct {
	Authenticated    bool     `json:"authenticated"`
	ValidationErrors []string `json:"validationErrors"`

	AccessTokenRaw              string    `json:"accessTokenRaw"`
	AccessTokenExpiresAt        time.Time `json:"accessTokenExpiresAt"`
	AccessTokenExpiresInSeconds int64     `json:"accessTokenExpiresInSeconds"`
	RefreshTokenRaw             string    `json:"refreshTokenRaw,omitempty"`
	IDTokenRaw                  string    `json:"idTokenRaw,omitempty"`
	TokenType                   string    `json:"tokenType"`
	Scopes                      []string  `json:"scopes"`
	SessionState                string    `json:"sessionState,omitempty"`

	AccessToken  Claims `json:"accessToken,omitempty"`
	RefreshToken Claims `json:"refreshToken,omitempty"`
	IDToken      Claims `json:"idToken,omitempty"`
}

// Subject is the "sub" claim of the ID token, falling back to the access token.
func (i *Identity) Subject() string {
	if i == nil {
		return ""
	}
	if sub := i.IDToken.String("sub"); sub != "" {
		return sub
	}
	return i.AccessToken.String("sub")
}

// DisplayName picks the friendliest name the provider returned.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	for _, claim := range []string{"name", "preferred_username", "email"} {
		if v := i.IDToken.String(claim); v != "" {
			return v
		}
	}
	return i.Subject()
}

// ParseIdentity decodes the stored identity field. Missing, empty and "null"
// values are anonymous. Anything that is not an authenticated bundle is rejected.
func ParseIdentity(raw *string) (*Identity, error) {
	if raw == nil || *raw == "" || *raw == "null" {
		return nil, nil
	}

	var identity Identity
	if err := json.Unmarshal([]byte(*raw), &identity); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidIdentity, err)
	}
	if !identity.Authenticated {
		return nil, fmt.Errorf("%w: bundle is not authenticated", apperrors.ErrInvalidIdentity)
	}
	return &identity, nil
}

// MarshalIdentity encodes identity for storage; nil encodes as "null".
func MarshalIdentity(identity *Identity) (string, error) {
	if identity == nil {
		return "null", nil
	}
	b, err := json.Marshal(identity)
	if err != nil {
		return "", apperrors.Wrapf(err, "marshal identity")
	}
	return string(b), nil
}
