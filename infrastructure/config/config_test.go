package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_ADDRESS", "ENVIRONMENT", "STORAGE_BACKEND", "TABLE_NAME", "DYNAMODB_TABLE",
		"EVENT_BUS", "EVENT_BUS_NAME", "TEMPLATES_FILE", "ENABLE_METRICS", "ENABLE_CORS", "CORS_ORIGINS",
		"REQUEST_TIMEOUT_SECONDS", "MAX_BODY_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, EventBusLog, cfg.EventBus)
	assert.Equal(t, "ittasu", cfg.DynamoDBTable)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.EnableMetrics)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UsesAWS())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORAGE_BACKEND", "dynamodb")
	t.Setenv("TABLE_NAME", "tasks")
	t.Setenv("EVENT_BUS", "eventbridge")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "tasks", cfg.DynamoDBTable)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
	assert.True(t, cfg.UsesAWS())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StorageBackend:        StorageMemory,
			EventBus:              EventBusLog,
			RequestTimeoutSeconds: 30,
			MaxBodyBytes:          1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "redis" }, wantErr: "STORAGE_BACKEND"},
		{name: "dynamodb without table", mutate: func(c *Config) { c.StorageBackend = StorageDynamoDB }, wantErr: "TABLE_NAME"},
		{name: "unknown bus", mutate: func(c *Config) { c.EventBus = "kafka" }, wantErr: "EVENT_BUS"},
		{name: "eventbridge without name", mutate: func(c *Config) { c.EventBus = EventBusEventBridge }, wantErr: "EVENT_BUS_NAME"},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeoutSeconds = 0 }, wantErr: "REQUEST_TIMEOUT_SECONDS"},
		{name: "zero body limit", mutate: func(c *Config) { c.MaxBodyBytes = 0 }, wantErr: "MAX_BODY_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
