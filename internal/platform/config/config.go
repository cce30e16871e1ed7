package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures process-level configuration so main stays lean. Values
// come from environment variables; defaults suit local development.
type Config struct {
	Addr          string        `env:"UNITD_ADDR" envDefault:":8080"`
	JWTSigningKey string        `env:"UNITD_JWT_SIGNING_KEY"`
	RedisURL      string        `env:"UNITD_REDIS_URL"`
	RedisPoolSize int           `env:"UNITD_REDIS_POOL_SIZE" envDefault:"10"`
	RedisTimeout  time.Duration `env:"UNITD_REDIS_TIMEOUT" envDefault:"3s"`
	PostgresDSN   string        `env:"UNITD_POSTGRES_DSN"`

	// SessionTTL bounds how long an unclosed batch survives in the session
	// store before the store's retention policy collects it.
	SessionTTL time.Duration `env:"UNITD_SESSION_TTL" envDefault:"24h"`

	AuditBuffer int `env:"UNITD_AUDIT_BUFFER" envDefault:"256"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
