package oidcflow

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-oidc-session/sessions"
	"github.com/jrsteele09/go-oidc-session/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// SignInScopes are requested on every sign-in.
var SignInScopes = []string{"openid", "profile"}

func generateState() string        { return oauth2.GenerateVerifier() }
func generateCodeVerifier() string { return oauth2.GenerateVerifier() }

// signIn stores a new challenge and sends the user agent to the provider.
// Only reached for sessions without an identity.
func (c *Controller) signIn(w http.ResponseWriter, r *http.Request, locals *sessions.Locals) {
	ctx := r.Context()
	origin := requestOrigin(r)

	originalRedirectURI := r.URL.Query().Get("redirect_uri")
	if originalRedirectURI == "" {
		originalRedirectURI = origin + "/"
	}

	challengeID, err := token.NewID(locals.Generator, locals.Hasher, c.cfg.Size)
	if err != nil {
		internalError(w, r, err, "Failed to generate challenge id")
		return
	}

	callback := url.Values{"challenge": {challengeID}}
	challenge := Challenge{
		State:               generateState(),
		CodeVerifier:        generateCodeVerifier(),
		OriginalRedirectURI: originalRedirectURI,
		RedirectURI:         origin + c.cfg.SignIn.Callback + "?" + callback.Encode(),
		Scopes:              append([]string{}, SignInScopes...),
	}

	if err := saveChallenge(ctx, locals.Store, challengeID, challenge, c.cfg.ChallengeTTL()); err != nil {
		internalError(w, r, err, "Failed to store sign-in challenge")
		return
	}

	authorizationURL, err := c.provider.AuthorizationURL(challenge.State, challenge.CodeVerifier, challenge.Scopes, challenge.RedirectURI)
	if err != nil {
		internalError(w, r, err, "Failed to build authorization url")
		return
	}

	log.Info().Str("challenge", challengeID).Str("redirect_uri", originalRedirectURI).Msg("Sign-in started")
	redirectTemporary(w, authorizationURL.String())
}

// signInCallback completes the flow. The challenge is consumed on every branch
// that finds it, so a challenge id can never be replayed.
func (c *Controller) signInCallback(w http.ResponseWriter, r *http.Request, locals *sessions.Locals) {
	ctx := r.Context()
	query := r.URL.Query()
	challengeID := query.Get("challenge")

	if challengeID == "" {
		respondWithError(w, http.StatusBadRequest, ErrorInvalidChallenge)
		return
	}

	challenge, found, err := takeChallenge(ctx, locals.Store, challengeID)
	if err != nil {
		internalError(w, r, err, "Failed to read sign-in challenge")
		return
	}
	if !found {
		log.Warn().Str("challenge", challengeID).Msg("Unknown sign-in challenge")
		respondWithError(w, http.StatusBadRequest, ErrorInvalidChallenge)
		return
	}

	var validationErrors []string
	if query.Get("state") != challenge.State {
		validationErrors = append(validationErrors, "State mismatched")
	}
	if query.Get("iss") != c.cfg.Issuer {
		validationErrors = append(validationErrors, "Issuer mismatched")
	}
	if len(validationErrors) > 0 {
		log.Warn().Str("challenge", challengeID).Strs("errors", validationErrors).Msg("Sign-in callback rejected")
		respondWithError(w, http.StatusBadRequest, ErrorInvalidCallback)
		return
	}

	identity, err := c.exchange(r, challenge, query.Get("code"), query.Get("session_state"), validationErrors)
	if err != nil {
		log.Err(err).Str("challenge", challengeID).Msg("Sign-in code exchange failed")
		if err := sessions.SaveIdentity(ctx, locals.Store, locals.SessionID, nil); err != nil {
			internalError(w, r, err, "Failed to reset session identity")
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := sessions.SaveIdentity(ctx, locals.Store, locals.SessionID, identity); err != nil {
		internalError(w, r, err, "Failed to store session identity")
		return
	}

	log.Info().Str("subject", identity.Subject()).Msg("Sign-in completed")
	redirectTemporary(w, challenge.OriginalRedirectURI)
}

func (c *Controller) exchange(r *http.Request, challenge Challenge, code, sessionState string, validationErrors []string) (*sessions.Identity, error) {
	tokens, err := c.provider.Exchange(r.Context(), code, challenge.CodeVerifier, challenge.RedirectURI)
	if err != nil {
		return nil, err
	}
	return newIdentity(tokens, validationErrors, sessionState)
}
