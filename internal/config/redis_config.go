package config

const (
	redisAddrEnvVar     = "REDIS_ADDR"
	redisPasswordEnvVar = "REDIS_PASSWORD"
	redisDBEnvVar       = "REDIS_DB"
	redisPrefixEnvVar   = "REDIS_KEY_PREFIX"
)

// Redis is unused when REDIS_ADDR is empty and sessions stay in memory.
type Redis struct{}

var _ StoreConfig = Redis{}

func (Redis) GetRedisAddr() string {
	return GetEnv(redisAddrEnvVar, "")
}

func (Redis) GetRedisPassword() string {
	return GetEnv(redisPasswordEnvVar, "")
}

func (Redis) GetRedisDB() int {
	return GetEnvInt(redisDBEnvVar, 0)
}

func (Redis) GetRedisKeyPrefix() string {
	return GetEnv(redisPrefixEnvVar, "oidc")
}
