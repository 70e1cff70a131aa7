package config

import (
	"testing"
	"time"

	"salonbook/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "")
	t.Setenv("STORE", "")
	t.Setenv("ADMISSION_RULE", "")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, NotifyDirect, cfg.NotifyMode)
	assert.Equal(t, models.RuleOverlap, cfg.AdmissionRule)
	assert.Equal(t, "http://localhost:8081", cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.Equal(t, 10*time.Second, cfg.Elasticsearch.Timeout)
	assert.False(t, cfg.NATS.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://salon.example/")
	t.Setenv("STORE", StoreMemory)
	t.Setenv("ADMISSION_RULE", string(models.RuleSymmetric))
	t.Setenv("NOTIFY_MODE", NotifyQueue)
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("ELASTICSEARCH_TIMEOUT", "3s")
	t.Setenv("DB_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "https://salon.example", cfg.BaseURL)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, models.RuleSymmetric, cfg.AdmissionRule)
	assert.Equal(t, NotifyQueue, cfg.NotifyMode)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Elasticsearch.Timeout)
	assert.Equal(t, 5432, cfg.Database.Port)
}
