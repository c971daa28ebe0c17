package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pms.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "9000"
cors_origins = ["http://desk.local"]

[auth]
jwt_secret = "from-file"
ttl_hours = 4

[billing]
remaining_alert_minutes = 15
`), 0o600))
	t.Setenv("PMS_CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("REMAINING_ALERT_MINUTES", "")
	t.Setenv("CORS_ORIGINS", "http://a.local, ,http://b.local")

	cfg, err := LoadAppConfig()

	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.CorsOrigins)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 4*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 15, cfg.Billing.RemainingAlertMinutes)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadAppConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PMS_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_TTL_HOURS", "0")
	t.Setenv("PORT", "")
	t.Setenv("REMAINING_ALERT_MINUTES", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := LoadAppConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 30, cfg.Billing.RemainingAlertMinutes)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout())
}

func TestLoadAppConfig_RequiresSecret(t *testing.T) {
	t.Setenv("PMS_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("JWT_SECRET", "")

	_, err := LoadAppConfig()

	assert.Error(t, err)
}

func TestLoadAppConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o600))
	t.Setenv("PMS_CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "x")

	_, err := LoadAppConfig()

	assert.Error(t, err)
}
