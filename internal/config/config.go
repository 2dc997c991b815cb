package config

import "time"

type Config interface {
	EnvConfig
	OIDCConfig
	SessionConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type OIDCConfig interface {
	GetIssuer() string
	GetClientID() string
	GetClientSecret() string
	GetUseDiscovery() bool
	GetDiscoveryTimeout() time.Duration
}

type SessionConfig interface {
	GetSessionExpireIn() int
	GetChallengeExpireIn() int
	GetCookieSecure() bool
	GetAutomaticSignIn() bool
}

type StoreConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type mainConfig struct {
	EnvVars
	OIDC
	Session
	Redis
}

func New() Config {
	return mainConfig{}
}
