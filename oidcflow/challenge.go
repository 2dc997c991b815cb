package oidcflow

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
	"github.com/jrsteele09/go-oidc-session/store"
)

// ChallengeKeyPrefix prefixes every sign-in challenge record.
const ChallengeKeyPrefix = "challenge:signIn:"

// ChallengeKey returns the store key of challengeID.
func ChallengeKey(challengeID string) string {
	return ChallengeKeyPrefix + challengeID
}

// Challenge is one in-progress sign-in attempt.
type Challenge struct {
	State               string   `json:"state"`
	CodeVerifier        string   `json:"codeVerifier"`
	OriginalRedirectURI string   `json:"originalRedirectUri"`
	RedirectURI         string   `json:"redirectUri"`
	Scopes              []string `json:"scopes"`
}

func saveChallenge(ctx context.Context, st store.Store, challengeID string, challenge Challenge, ttl time.Duration) error {
	b, err := json.Marshal(challenge)
	if err != nil {
		return apperrors.Wrapf(err, "marshal challenge")
	}
	key := ChallengeKey(challengeID)
	if err := st.SetSingle(ctx, key, string(b)); err != nil {
		return err
	}
	return st.Expire(ctx, key, ttl)
}

// takeChallenge consumes the challenge. ok is false when it does not exist or
// cannot be decoded; in both cases nothing is left behind in the store.
func takeChallenge(ctx context.Context, st store.Store, challengeID string) (challenge Challenge, ok bool, err error) {
	raw, found, err := st.Take(ctx, ChallengeKey(challengeID))
	if err != nil || !found {
		return Challenge{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return Challenge{}, false, nil
	}
	return challenge, true, nil
}
