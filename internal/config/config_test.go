package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("STORE", "memory")
	t.Setenv("DB_DSN", "")
	t.Setenv("ENV", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("REMINDER_CRON", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "*/5 * * * *", cfg.ReminderCron)
	assert.False(t, cfg.UseRedis())
	assert.False(t, cfg.UseRabbitMQ())
}

func TestFromEnvValidation(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("STORE", "postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REDIS_DB", "")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DB_DSN")

	t.Setenv("DB_DSN", "postgres://localhost/tutoring")
	t.Setenv("REDIS_DB", "two")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "REDIS_DB")

	t.Setenv("REDIS_DB", "2")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TIMEZONE")

	t.Setenv("TIMEZONE", "Europe/Moscow")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
}
