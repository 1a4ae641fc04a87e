package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, ":8000", cfg.Address())
	assert.Equal(t, "muchtodo", cfg.Database.Name)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "mongodb://db:27017")
	t.Setenv("DATABASE_NAME", "tasks")
	t.Setenv("PORT", "9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.Database.URL)
	assert.Equal(t, "tasks", cfg.Database.Name)
	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.HTTP.Port)
}

func TestLoadReportsUnreadableDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.Mkdir(".env", 0o755))

	_, err := Load()
	assert.ErrorContains(t, err, "load .env")
}
