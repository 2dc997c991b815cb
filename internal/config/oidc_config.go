package config

import "time"

const (
	issuerEnvVar       = "KEYCLOAK_ISSUER"
	clientIDEnvVar     = "KEYCLOAK_CLIENT_ID"
	clientSecretEnvVar = "KEYCLOAK_CLIENT_SECRET"
	discoveryEnvVar    = "OIDC_DISCOVERY"
)

// OIDC defaults point at a local Keycloak dev realm.
type OIDC struct{}

var _ OIDCConfig = OIDC{}

func (OIDC) GetIssuer() string {
	return GetEnv(issuerEnvVar, "http://localhost:8180/realms/master")
}

func (OIDC) GetClientID() string {
	return GetEnv(clientIDEnvVar, "go-oidc-session")
}

func (OIDC) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

// GetUseDiscovery selects the discovery based provider, which also verifies ID tokens.
func (OIDC) GetUseDiscovery() bool {
	return GetEnvBool(discoveryEnvVar, false)
}

func (OIDC) GetDiscoveryTimeout() time.Duration {
	return 10 * time.Second
}
