package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/hackmate.sqlite", cfg.Database.Path)
	require.Equal(t, "hackmate", cfg.Auth.JWT.Issuer)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, 90, cfg.Maintenance.AuditRetentionDays)
	require.Equal(t, 720*time.Hour, cfg.Maintenance.StaleRequestAge)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HACKMATE_SERVER_PORT", "9090")
	t.Setenv("HACKMATE_DATABASE_DRIVER", "postgres")
	t.Setenv("HACKMATE_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}

func TestApplyRuntimeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Server.BaseURL = "https://hackmate.example/"

	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)

	require.True(t, generated["auth.jwt.secret"])
	require.NotEmpty(t, cfg.Auth.JWT.Secret)

	require.True(t, generated["teams.invite_link_base_url"])
	require.Equal(t, "https://hackmate.example", cfg.Teams.InviteLinkBaseURL)

	// Existing values are never overwritten.
	cfg2 := &Config{}
	cfg2.Auth.JWT.Secret = "configured"
	cfg2.Teams.InviteLinkBaseURL = "https://custom.example"

	generated, err = ApplyRuntimeDefaults(cfg2)
	require.NoError(t, err)
	require.Empty(t, generated)
	require.Equal(t, "configured", cfg2.Auth.JWT.Secret)
}

func TestApplyRuntimeDefaultsNilConfig(t *testing.T) {
	_, err := ApplyRuntimeDefaults(nil)
	require.Error(t, err)
}
