package config

const (
	expireInEnvVar          = "KEYCLOAK_EXPIRE_IN"
	challengeExpireInEnvVar = "OIDC_CHALLENGE_EXPIRE_IN"
	cookieSecureEnvVar      = "SESSION_COOKIE_SECURE"
	automaticSignInEnvVar   = "OIDC_CHALLENGE_SIGNIN"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionExpireIn() int {
	return GetEnvInt(expireInEnvVar, 86400)
}

func (Session) GetChallengeExpireIn() int {
	return GetEnvInt(challengeExpireInEnvVar, 300)
}

// GetCookieSecure should be true anywhere the site is served over https.
func (Session) GetCookieSecure() bool {
	return GetEnvBool(cookieSecureEnvVar, false)
}

func (Session) GetAutomaticSignIn() bool {
	return GetEnvBool(automaticSignInEnvVar, true)
}
