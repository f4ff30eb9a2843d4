package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything cmd/server needs from the environment so main
// stays lean.
type Config struct {
	Addr string

	// Verification provider
	ProviderBaseURL   string
	ProviderAPIKey    string
	ProviderTimeout   time.Duration
	DetailFetchDelay  time.Duration
	CallbackBaseURL   string
	WebhookSecretHash string // bcrypt hash of the shared webhook token

	JWTSigningKey string

	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	AuditTopic   string

	DevMode bool
}

// FromEnv builds a Config from environment variables with dev-friendly
// defaults. Production deployments must override the signing key and the
// webhook secret hash.
func FromEnv() Config {
	cfg := Config{
		Addr:              envOr("FINGATE_ADDR", ":8080"),
		ProviderBaseURL:   envOr("VERIFY_PROVIDER_URL", "https://api.verify.example.com"),
		ProviderAPIKey:    os.Getenv("VERIFY_PROVIDER_API_KEY"),
		ProviderTimeout:   envDuration("VERIFY_PROVIDER_TIMEOUT", 15*time.Second),
		DetailFetchDelay:  envDuration("VERIFY_DETAIL_FETCH_DELAY", 2*time.Second),
		CallbackBaseURL:   envOr("FINGATE_CALLBACK_URL", ""),
		WebhookSecretHash: os.Getenv("WEBHOOK_SECRET_HASH"),
		JWTSigningKey:     envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		AuditTopic:        envOr("AUDIT_TOPIC", "fingate.onboarding.audit"),
		DevMode:           os.Getenv("FINGATE_DEV_MODE") == "true",
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
