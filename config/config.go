package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL        = "http://localhost:8080/api"
	defaultRequestTimeout = 15 * time.Second
	defaultKeystorePath   = ".storefront/session.json"
	defaultGeocodeURL     = "https://nominatim.openstreetmap.org"
	defaultUserAgent      = "storefront-merchant/1.0"
	defaultExchange       = "merchant.orders"
	defaultSandboxAddr    = ":8080"
)

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration

	KeystoreDriver string
	KeystorePath   string
	DatabaseURL    string

	AMQPURL      string
	AMQPExchange string

	GeocodeURL       string
	GeocodeUserAgent string

	LogLevel  string
	LogFormat string

	SandboxAddr string
	SecretKey   []byte
}

// Load reads an optional .env file followed by the process environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		BaseURL:          getenv("API_BASE_URL", defaultBaseURL),
		KeystoreDriver:   getenv("KEYSTORE_DRIVER", "file"),
		KeystorePath:     getenv("KEYSTORE_PATH", defaultKeystorePath),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		AMQPExchange:     getenv("AMQP_EXCHANGE", defaultExchange),
		GeocodeURL:       getenv("GEOCODE_URL", defaultGeocodeURL),
		GeocodeUserAgent: getenv("GEOCODE_USER_AGENT", defaultUserAgent),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "text"),
		SandboxAddr:      getenv("SANDBOX_ADDR", defaultSandboxAddr),
		SecretKey:        []byte(os.Getenv("JWT_SECRET_KEY")),
	}

	timeout := getenv("REQUEST_TIMEOUT", defaultRequestTimeout.String())
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", timeout, err)
	}
	cfg.RequestTimeout = d

	switch cfg.KeystoreDriver {
	case "file", "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres keystore")
		}
	default:
		return nil, fmt.Errorf("unknown KEYSTORE_DRIVER %q", cfg.KeystoreDriver)
	}
	return cfg, nil
}

// Logger builds the logrus logger described by the config.
func (c *Config) Logger() (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
