package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, name := range []string{"PORT", "ENV", "KEYCLOAK_ISSUER", "KEYCLOAK_EXPIRE_IN", "REDIS_ADDR", "SESSION_COOKIE_SECURE", "OIDC_DISCOVERY", "OIDC_CHALLENGE_SIGNIN"} {
		t.Setenv(name, "")
	}
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8180/realms/master", c.GetIssuer())
	require.Equal(t, 86400, c.GetSessionExpireIn())
	require.Equal(t, 300, c.GetChallengeExpireIn())
	require.False(t, c.GetCookieSecure())
	require.True(t, c.GetAutomaticSignIn())
	require.False(t, c.GetUseDiscovery())
	require.Empty(t, c.GetRedisAddr())
	require.Equal(t, 10*time.Second, c.GetDiscoveryTimeout())
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("KEYCLOAK_ISSUER", "https://idp.example/realms/x")
	t.Setenv("KEYCLOAK_CLIENT_ID", "app")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "s3cret")
	t.Setenv("KEYCLOAK_EXPIRE_IN", "600")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("OIDC_DISCOVERY", "1")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	c := config.New()

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "https://idp.example/realms/x", c.GetIssuer())
	require.Equal(t, "app", c.GetClientID())
	require.Equal(t, "s3cret", c.GetClientSecret())
	require.Equal(t, 600, c.GetSessionExpireIn())
	require.True(t, c.GetCookieSecure())
	require.True(t, c.GetUseDiscovery())
	require.Equal(t, "localhost:6379", c.GetRedisAddr())
	require.Equal(t, 2, c.GetRedisDB())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("KEYCLOAK_EXPIRE_IN", "soon")
	t.Setenv("SESSION_COOKIE_SECURE", "maybe")

	require.Equal(t, 86400, config.GetEnvInt("KEYCLOAK_EXPIRE_IN", 86400))
	require.False(t, config.GetEnvBool("SESSION_COOKIE_SECURE", false))
}
