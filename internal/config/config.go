package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	// SearchTier forces the capability tier instead of probing:
	// "advanced", "fallback", or empty to probe at startup.
	SearchTier string `envconfig:"SEARCH_TIER"`

	// AuthTokens maps static bearer tokens to user IDs, e.g.
	// CAMPUSHUB_AUTH_TOKENS="tok1:user-1,tok2:user-2". Development stand-in
	// for the external identity provider.
	AuthTokens map[string]string `envconfig:"AUTH_TOKENS"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	SentryDSN              string  `envconfig:"SENTRY_DSN"`
	SentryEnvironment      string  `envconfig:"SENTRY_ENVIRONMENT"`
	SentryTracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CAMPUSHUB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}
