package oidcflow

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
	"github.com/jrsteele09/go-oidc-session/sessions"
)

// DecodeClaims returns the payload of a JWT without verifying its signature.
// Verification is the provider's job.
func DecodeClaims(raw string) (sessions.Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}
	return sessions.Claims(claims), nil
}

// newIdentity assembles the bundle stored on the session after a successful exchange.
// Access and ID tokens must be JWTs; an opaque or absent refresh token is kept raw only.
func newIdentity(tokens *Tokens, validationErrors []string, sessionState string) (*sessions.Identity, error) {
	accessToken, err := DecodeClaims(tokens.AccessToken)
	if err != nil {
		return nil, apperrors.Wrapf(err, "access token")
	}
	idToken, err := DecodeClaims(tokens.IDToken)
	if err != nil {
		return nil, apperrors.Wrapf(err, "id token")
	}
	var refreshToken sessions.Claims
	if tokens.RefreshToken != "" {
		refreshToken, _ = DecodeClaims(tokens.RefreshToken)
	}

	expiresAt := tokens.Expiry
	if expiresAt.IsZero() && tokens.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}

	return &sessions.Identity{
		Authenticated:               true,
		ValidationErrors:            append([]string{}, validationErrors...),
		AccessTokenRaw:              tokens.AccessToken,
		AccessTokenExpiresAt:        expiresAt,
		AccessTokenExpiresInSeconds: tokens.ExpiresIn,
		RefreshTokenRaw:             tokens.RefreshToken,
		IDTokenRaw:                  tokens.IDToken,
		TokenType:                   tokens.TokenType,
		Scopes:                      append([]string{}, tokens.Scopes...),
		SessionState:                sessionState,
		AccessToken:                 accessToken,
		RefreshToken:                refreshToken,
		IDToken:                     idToken,
	}, nil
}
