package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "")
	t.Setenv("STORE_DRIVER", "")

	cfg := Load()
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, "BookS-API", cfg.JWTIssuer)
	assert.Equal(t, "BookS-Client", cfg.JWTAudience)
	assert.Equal(t, "book_cover", cfg.GCSCoverBucket)
	assert.False(t, cfg.MailSendEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("JWT_ACCESS_TTL", "90m")
	t.Setenv("GCS_PUBLIC_BUCKET", "true")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg := Load()
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.AccessTTL)
	assert.True(t, cfg.GCSPublicBucket)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "soon")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.AccessTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.CookieSecure)
}

func TestPostgresDSNAndCSV(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable",
		CORSAllowedOrigins: " http://a.test, ,http://b.test ", ElasticsearchAddrs: "http://es:9200"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Equal(t, []string{"http://es:9200"}, cfg.ESAddrs())
}
