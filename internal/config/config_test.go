package config_test

import (
	"testing"
	"time"

	"foodtue/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "user-secret")
	v.Set("HOTEL_JWT_SECRET", "hotel-secret")
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.AppPort)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, config.EventsNone, cfg.Events.Driver)
	assert.Equal(t, 15*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.KafkaBrokers)
}

func TestFromViper_ParsesLists(t *testing.T) {
	cfg, err := config.FromViper(newViper(map[string]interface{}{
		"EVENTS_DRIVER":   "KAFKA",
		"KAFKA_BROKERS":   "k1:9092, k2:9092,",
		"PUBLIC_BASE_URL": "https://foodtue.example/",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.EventsKafka, cfg.Events.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "https://foodtue.example", cfg.PublicBaseURL)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := map[string]map[string]interface{}{
		"missing secret":   {"JWT_SECRET": ""},
		"unknown storage":  {"STORAGE_DRIVER": "cassandra"},
		"unknown events":   {"EVENTS_DRIVER": "nats"},
		"wildcard cors":    {"CORS_ORIGINS": "*"},
		"bad log level":    {"LOG_LEVEL": "verbose"},
		"bad log format":   {"LOG_FORMAT": "xml"},
		"empty sqlite dsn": {"STORAGE_DRIVER": "sqlite", "DATABASE_DSN": ""},
		"no kafka brokers": {"EVENTS_DRIVER": "kafka", "KAFKA_BROKERS": ""},
	}
	for name, overrides := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.FromViper(newViper(overrides))
			assert.Error(t, err)
		})
	}
}
