package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	// AppBaseURL is the front-end origin used to build reset and
	// verification links in outbound mail.
	AppBaseURL string `env:"APP_BASE_URL, default=http://localhost:5173"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type AuthConfig struct {
	MaxLoginAttempts   int           `env:"AUTH_MAX_LOGIN_ATTEMPTS, default=5"`
	LockoutDuration    time.Duration `env:"AUTH_LOCKOUT_DURATION,   default=15m"`
	ResetTokenTTL      time.Duration `env:"AUTH_RESET_TOKEN_TTL,    default=10m"`
	VerifyTokenTTL     time.Duration `env:"AUTH_VERIFY_TOKEN_TTL,   default=24h"`
	HashConcurrency    int64         `env:"AUTH_HASH_CONCURRENCY,   default=0"`
	ResetRequestLimit  int64         `env:"AUTH_RESET_REQ_LIMIT,    default=3"`
	ResetRequestWindow time.Duration `env:"AUTH_RESET_REQ_WINDOW,   default=1h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=freelancehub_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST"`
	Port int    `env:"SMTP_PORT, default=587"`
	From string `env:"SMTP_FROM, default=no-reply@freelancehub.io"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	return &cfg, nil
}
