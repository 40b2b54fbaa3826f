package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"GRPC_PORT", "STORE_BACKEND", "MONGO_URI", "MONGO_DB", "PRICING_MARKUP", "SUBMIT_TIMEOUT", "NATS_URL"} {
		t.Setenv(key, "")
	}
	t.Setenv("GRPC_PORT", "50051")
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "marketplace")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Pricing.Markup)
	assert.Equal(t, 30*time.Second, cfg.GRPC.SubmitTimeout)
	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Empty(t, cfg.NATS.URL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("CATALOG_SEED", "testdata/catalog.yaml")
	t.Setenv("PRICING_MARKUP", "1.05")
	t.Setenv("SUBMIT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.GRPC.Port)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "testdata/catalog.yaml", cfg.Store.CatalogSeed)
	assert.Equal(t, 1.05, cfg.Pricing.Markup)
	assert.Equal(t, 5*time.Second, cfg.GRPC.SubmitTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "markup not a number", key: "PRICING_MARKUP", value: "five", wantErr: "PRICING_MARKUP"},
		{name: "markup not positive", key: "PRICING_MARKUP", value: "0", wantErr: "PRICING_MARKUP must be positive"},
		{name: "bad timeout", key: "SUBMIT_TIMEOUT", value: "soon", wantErr: "SUBMIT_TIMEOUT"},
		{name: "unknown backend", key: "STORE_BACKEND", value: "redis", wantErr: "STORE_BACKEND must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_BACKEND", "memory")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MongoNeedsURI(t *testing.T) {
	cfg := &Config{
		GRPC:    GRPCConfig{Port: "50051"},
		Store:   StoreConfig{Backend: BackendMongo},
		Mongo:   MongoConfig{DB: "marketplace"},
		Pricing: PricingConfig{Markup: 1},
	}
	assert.EqualError(t, cfg.Validate(), "MONGO_URI is required")
}
