package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	GRPC    GRPCConfig
	Store   StoreConfig
	Mongo   MongoConfig
	NATS    NATSConfig
	Pricing PricingConfig
}

type GRPCConfig struct {
	Port string
	// SubmitTimeout bounds a whole submission; zero means no bound.
	SubmitTimeout time.Duration
}

type StoreConfig struct {
	Backend     string
	CatalogSeed string
}

type MongoConfig struct {
	URI string
	DB  string
}

type NATSConfig struct {
	URL     string
	Subject string
}

type PricingConfig struct {
	// Markup multiplies every base price, in previews and persisted amounts alike.
	Markup float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	markup, err := getEnvFloat("PRICING_MARKUP", 1.0)
	if err != nil {
		return nil, err
	}
	submitTimeout, err := getEnvDuration("SUBMIT_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GRPC: GRPCConfig{
			Port:          getEnv("GRPC_PORT", "50051"),
			SubmitTimeout: submitTimeout,
		},
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", BackendMongo),
			CatalogSeed: getEnv("CATALOG_SEED", ""),
		},
		Mongo: MongoConfig{
			URI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DB:  getEnv("MONGO_DB", "marketplace"),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "order.submitted"),
		},
		Pricing: PricingConfig{
			Markup: markup,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.GRPC.Port == "" {
		return fmt.Errorf("GRPC_PORT is required")
	}
	if c.GRPC.SubmitTimeout < 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must not be negative")
	}
	switch c.Store.Backend {
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
		if c.Mongo.DB == "" {
			return fmt.Errorf("MONGO_DB is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMongo, BackendMemory, c.Store.Backend)
	}
	if c.Pricing.Markup <= 0 {
		return fmt.Errorf("PRICING_MARKUP must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
