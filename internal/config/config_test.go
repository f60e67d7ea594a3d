package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("PROJECTOR_WORKERS", "")
	t.Setenv("DB_MIGRATE", "")
	cfg := Load()
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 4, cfg.ProjectorWorkers)
	assert.False(t, cfg.Migrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("PROJECTOR_WORKERS", "8")
	t.Setenv("DB_MIGRATE", "true")
	t.Setenv("UPI_VPA", "imperial@okbank")
	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 8, cfg.ProjectorWorkers)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, "imperial@okbank", cfg.UPIVPA)
}

func TestGetintRejectsNonPositive(t *testing.T) {
	t.Setenv("PROJECTOR_WORKERS", "-2")
	assert.Equal(t, 4, Load().ProjectorWorkers)
}

func TestLocation(t *testing.T) {
	t.Setenv("BUSINESS_TIMEZONE", "")
	loc, err := Load().Location()
	assert.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus")
	_, err = Load().Location()
	assert.Error(t, err)
}
