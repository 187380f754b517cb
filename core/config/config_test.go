package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "shape", cfg.Database.GeometryColumn)
	assert.Equal(t, 30, cfg.Database.TimeoutSeconds)
	assert.Equal(t, "figure-sync", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "_new_features", cfg.Sync.OutputSuffix)
	assert.Equal(t, "reports", cfg.Sync.ReportPrefix)
	assert.False(t, cfg.Sync.ContinueOnError)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB)
}

func TestLoadConfig_EnvFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	env := "DATABASE_DRIVER=mysql\nDATABASE_PORT=3307\nSYNC_CONTINUE_ON_ERROR=true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	t.Setenv("SYNC_CACHE_TTL_SECONDS", "120")
	t.Cleanup(func() {
		// godotenv.Overload writes straight into the process environment.
		os.Unsetenv("DATABASE_DRIVER")
		os.Unsetenv("DATABASE_PORT")
		os.Unsetenv("SYNC_CONTINUE_ON_ERROR")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.True(t, cfg.Sync.ContinueOnError)
	assert.Equal(t, 120, cfg.Sync.CacheTTLSeconds)
	assert.Equal(t, 120.0, cfg.Sync.CacheTTL().Seconds())
}
