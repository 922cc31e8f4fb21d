package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "WaveWallet"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour

	defaultPaystackBaseURL = "https://api.paystack.co"
	defaultProviderTimeout = 15 * time.Second
	defaultProviderRetries = 3
	defaultProviderBackoff = 500 * time.Millisecond
	defaultTransfersPerMin = 10

	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	idempotencyTTLEnvVar   = "IDEMPOTENCY_TTL"
	providerTimeoutEnvVar  = "PROVIDER_TIMEOUT"
	providerRetriesEnvVar  = "PROVIDER_MAX_ATTEMPTS"
	providerBackoffEnvVar  = "PROVIDER_RETRY_DELAY"
	transfersPerMinEnvVar  = "TRANSFERS_PER_MINUTE"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	// Provider credentials are injected here and handed explicitly to the
	// gateway constructor; business logic never reads the environment.
	PaystackSecretKey string
	PaystackBaseURL   string

	ProviderTimeout     time.Duration
	ProviderMaxAttempts int
	ProviderRetryDelay  time.Duration

	TransfersPerMinute int

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:             getEnv("APP_NAME", defaultAppName),
		AppEnv:              getEnv("APP_ENV", defaultAppEnv),
		Port:                getEnv("PORT", defaultPort),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		PaystackSecretKey:   os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:     getEnv("PAYSTACK_BASE_URL", defaultPaystackBaseURL),
		ProviderTimeout:     defaultProviderTimeout,
		ProviderMaxAttempts: defaultProviderRetries,
		ProviderRetryDelay:  defaultProviderBackoff,
		TransfersPerMinute:  defaultTransfersPerMin,
		ShutdownPeriod:      defaultShutdownDelay,
		IdempotencyTTL:      defaultIdempotencyTTL,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv(shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idempotencyTTLEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ProviderTimeout, err = durationEnv(providerTimeoutEnvVar, cfg.ProviderTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ProviderRetryDelay, err = durationEnv(providerBackoffEnvVar, cfg.ProviderRetryDelay); err != nil {
		return Config{}, err
	}
	if cfg.ProviderMaxAttempts, err = intEnv(providerRetriesEnvVar, cfg.ProviderMaxAttempts); err != nil {
		return Config{}, err
	}
	if cfg.TransfersPerMinute, err = intEnv(transfersPerMinEnvVar, cfg.TransfersPerMinute); err != nil {
		return Config{}, err
	}

	// Outside development the service refuses to start without real backends.
	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.PaystackSecretKey == "" {
		return Config{}, fmt.Errorf("PAYSTACK_SECRET_KEY must be set")
	}

	return cfg, nil
}

// IsDev reports whether the service runs in a development-like environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
