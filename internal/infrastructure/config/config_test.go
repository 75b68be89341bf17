package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withCleanEnv unsets the given variables for the duration of the test
func withCleanEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

var envKeys = []string{
	"DROPSHIP_APP_NAME",
	"DROPSHIP_APP_ENV",
	"DROPSHIP_APP_PORT",
	"DROPSHIP_DATABASE_HOST",
	"DROPSHIP_DATABASE_PORT",
	"DROPSHIP_DATABASE_PASSWORD",
	"DROPSHIP_DATABASE_SSLMODE",
	"DROPSHIP_DATABASE_MAX_OPEN_CONNS",
	"DROPSHIP_DATABASE_MAX_IDLE_CONNS",
	"DROPSHIP_JWT_ENABLED",
	"DROPSHIP_JWT_SECRET",
	"DROPSHIP_SYNC_API_KEY",
	"DROPSHIP_SYNC_WORKERS",
	"DROPSHIP_SYNC_FETCH_TIMEOUT",
	"DROPSHIP_SYNC_LOCK_BACKEND",
	"DROPSHIP_STORAGE_ENABLED",
	"DROPSHIP_STORAGE_BUCKET",
	"DROPSHIP_CATALOG_DEFAULT_SALES_CHANNEL_ID",
	"DROPSHIP_TELEMETRY_SAMPLING_RATIO",
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t, envKeys...)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "dropship", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "commerce", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 4, cfg.Sync.Workers)
		assert.Equal(t, 30*time.Second, cfg.Sync.FetchTimeout)
		assert.Equal(t, "memory", cfg.Sync.LockBackend)
		assert.NotNil(t, cfg.Sync.Routes)
		assert.Equal(t, "supplier-feeds", cfg.Storage.Prefix)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with DROPSHIP prefix", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		t.Setenv("DROPSHIP_APP_NAME", "dropship-test")
		t.Setenv("DROPSHIP_APP_PORT", "9000")
		t.Setenv("DROPSHIP_DATABASE_HOST", "db.local")
		t.Setenv("DROPSHIP_DATABASE_PORT", "5433")
		t.Setenv("DROPSHIP_SYNC_API_KEY", "secret-key")
		t.Setenv("DROPSHIP_SYNC_WORKERS", "8")
		t.Setenv("DROPSHIP_SYNC_FETCH_TIMEOUT", "10s")
		t.Setenv("DROPSHIP_SYNC_LOCK_BACKEND", "redis")
		t.Setenv("DROPSHIP_CATALOG_DEFAULT_SALES_CHANNEL_ID", "sc_01")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "dropship-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "secret-key", cfg.Sync.APIKey)
		assert.Equal(t, 8, cfg.Sync.Workers)
		assert.Equal(t, 10*time.Second, cfg.Sync.FetchTimeout)
		assert.Equal(t, "redis", cfg.Sync.LockBackend)
		assert.Equal(t, "sc_01", cfg.Catalog.DefaultSalesChannelID)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		t.Setenv("DROPSHIP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("DROPSHIP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown lock backend", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		t.Setenv("DROPSHIP_SYNC_LOCK_BACKEND", "etcd")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.lock_backend")
	})

	t.Run("requires bucket when storage enabled", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		t.Setenv("DROPSHIP_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		t.Setenv("DROPSHIP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("requires secret when jwt enabled", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		t.Setenv("DROPSHIP_JWT_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("DROPSHIP_APP_ENV", "production")
		t.Setenv("DROPSHIP_JWT_ENABLED", "true")
		t.Setenv("DROPSHIP_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("DROPSHIP_DATABASE_PASSWORD", "secure-password")
		t.Setenv("DROPSHIP_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires jwt in production", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		setValidProductionBase(t)
		t.Setenv("DROPSHIP_JWT_ENABLED", "false")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.enabled must be true")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		setValidProductionBase(t)
		t.Setenv("DROPSHIP_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		setValidProductionBase(t)
		os.Unsetenv("DROPSHIP_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		withCleanEnv(t, envKeys...)
		setValidProductionBase(t)
		t.Setenv("DROPSHIP_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode cannot be 'disable'")
	})
}

func TestRoutesFrom(t *testing.T) {
	routes := routesFrom(map[string]string{
		"abc": "https://feeds.example.com/abc.json",
		"XyZ": "https://feeds.example.com/xyz.json",
	})

	assert.Equal(t, "https://feeds.example.com/abc.json", routes["ABC"])
	assert.Equal(t, "https://feeds.example.com/xyz.json", routes["XYZ"])
	assert.Len(t, routes, 2)
}

func TestConfig_ValidateRoutes(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Sync.Routes = map[string]string{"ABC": "not a url"}

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync.routes.ABC")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
