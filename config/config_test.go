package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, MailDeliveryDirect, cfg.MailDelivery)
	assert.False(t, cfg.MailSendEnabled)
	assert.Equal(t, "http://localhost:8080", cfg.CertificationBaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.VerifyRedirectURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.ESAddrs())
	assert.Empty(t, cfg.CORSOrigins())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("MAIL_DELIVERY", "queue")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, MailDeliveryQueue, cfg.MailDelivery)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, int32(10), cfg.DBMaxConns)
}

func TestPostgresDSN_EscapesCredentials(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "users", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/users?sslmode=disable", cfg.PostgresDSN())
}

func TestMailgunConfigured(t *testing.T) {
	assert.False(t, (&Config{MailgunDomain: "mg.example.com"}).MailgunConfigured())
	assert.True(t, (&Config{MailgunDomain: "mg.example.com", MailgunAPIKey: "k", MailgunSender: "s"}).MailgunConfigured())
}
