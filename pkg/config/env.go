package config

const (
	EnvDatabaseURL      = "DATABASE_URL"
	EnvDatabaseName     = "DATABASE_NAME"
	EnvStoreDriver      = "STORE_DRIVER"
	EnvMongoConnTimeout = "MONGO_CONN_TIMEOUT"
	EnvStoreTimeout     = "STORE_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout       = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL       = "IDEMPOTENCY_TTL"
	EnvIdempotencyRedisAddr = "IDEMPOTENCY_REDIS_ADDR"
	EnvMaxRequestSize       = "MAX_REQUEST_SIZE"
	EnvCORSMaxAge           = "CORS_MAX_AGE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
