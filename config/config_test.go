package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 336*time.Hour, cfg.Redis.SessionTTL)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "session_id", cfg.Security.SessionCookie)
	assert.Equal(t, 10, cfg.Business.LowStockThreshold)
	assert.False(t, cfg.Business.StrictOrderTransitions)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_DRIVER", DriverMemory)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Business.StrictOrderTransitions)
	assert.Equal(t, time.Hour, cfg.Redis.SessionTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}
