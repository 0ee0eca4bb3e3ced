package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Recommend RecommendConfig `mapstructure:"recommend" validate:"required"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                  int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel              string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// CacheConfig controls the mastered-words cache.
// An empty RedisURL runs the cache in memory only.
type CacheConfig struct {
	RedisURL                string `mapstructure:"redis_url" validate:"omitempty,url"`
	TTLSeconds              int    `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	OpTimeoutMillis         int    `mapstructure:"op_timeout_millis" validate:"required,gt=0"`
	BreakerFailureThreshold uint32 `mapstructure:"breaker_failure_threshold" validate:"required,gt=0"`
	BreakerCooldownSeconds  int    `mapstructure:"breaker_cooldown_seconds" validate:"required,gt=0"`
}

// RecommendConfig holds defaults for video recommendations.
type RecommendConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"required,gt=0"`
	MaxUnknown   int `mapstructure:"max_unknown" validate:"gte=0"`
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"required,gt=0"`
}
