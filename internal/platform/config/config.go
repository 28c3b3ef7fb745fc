package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything the server reads from the environment so main
// stays lean.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	JWTSigningKey string
	SMS           SMSConfig
	CORSOrigins   []string
	SweepInterval time.Duration
}

// SMSConfig holds the Semaphore gateway credentials.
type SMSConfig struct {
	APIKey     string
	SenderName string
	Timeout    time.Duration
}

// FromEnv builds a Config from environment variables with development
// defaults. An empty DatabaseURL or RedisURL selects the in-memory backends.
func FromEnv() Config {
	addr := os.Getenv("BRGY_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	sender := os.Getenv("SEMAPHORE_SENDER")
	if sender == "" {
		sender = "SEMAPHORE"
	}

	origins := []string{"http://localhost:8100", "http://localhost"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSigningKey: jwtSigningKey,
		SMS: SMSConfig{
			APIKey:     os.Getenv("SEMAPHORE_API_KEY"),
			SenderName: sender,
			Timeout:    15 * time.Second,
		},
		CORSOrigins:   origins,
		SweepInterval: 24 * time.Hour,
	}
}
