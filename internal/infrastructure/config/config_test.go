package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "storefront-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Search.Hosts)
	assert.Equal(t, "products_current", cfg.Search.Index)
	assert.Equal(t, "storefront_session", cfg.Session.CookieName)
	assert.Equal(t, 720*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SearchTTL)
	assert.Equal(t, 3, cfg.Availability.BaseDeliveryDays)
	assert.Equal(t, 14, cfg.Availability.ScanDays)
	assert.Equal(t, 30, cfg.HTTP.SearchRateLimitRequests)
	assert.Equal(t, time.Minute, cfg.HTTP.SearchRateLimitWindow)
	assert.Equal(t, 5, cfg.HTTP.AuthRateLimitRequests)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "cross-origin requests are rejected until origins are configured")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_APP_PORT", "9090")
	t.Setenv("STOREFRONT_DATABASE_PASSWORD", "secret-from-env")
	t.Setenv("STOREFRONT_SEARCH_INDEX", "products_v2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "secret-from-env", cfg.Database.Password)
	assert.Equal(t, "products_v2", cfg.Search.Index)
}

func TestValidate_ProductionRequirements(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"
		cfg.Session.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Session.Secure = true
		cfg.Database.Password = "password"
		cfg.Database.SSLMode = "require"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("missing session secret", func(t *testing.T) {
		cfg := base()
		cfg.Session.Secret = ""
		assert.Error(t, cfg.validate())
	})

	t.Run("short session secret", func(t *testing.T) {
		cfg := base()
		cfg.Session.Secret = "short"
		assert.Error(t, cfg.validate())
	})

	t.Run("ssl disabled", func(t *testing.T) {
		cfg := base()
		cfg.Database.SSLMode = "disable"
		assert.Error(t, cfg.validate())
	})

	t.Run("insecure cookie", func(t *testing.T) {
		cfg := base()
		cfg.Session.Secure = false
		assert.Error(t, cfg.validate())
	})

	t.Run("wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})
}

func TestValidate_PoolSettings(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1
	assert.Error(t, cfg.validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "store",
		Password: "p@ss/word",
		DBName:   "storefront",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters must be escaped, not passed through
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
