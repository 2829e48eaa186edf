package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("OUTBOX_LIMIT", "")
	t.Setenv("USE_KAFKA", "")

	cfg := LoadConfig()

	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, 10, cfg.OutboxLimit)
	assert.False(t, cfg.UseKafka)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTCookieExpire)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("USE_KAFKA", "true")
	t.Setenv("OUTBOX_PERIOD", "250ms")
	t.Setenv("MAX_FILE_UPLOAD", "abc")

	cfg := LoadConfig()

	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.UseKafka)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPeriod)
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload, "valor inválido usa el de por defecto")
}
