package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "WIDGET_CLOSE_DELAY", "WIDGET_REPLY_DELAY", "WIDGET_PROFILES_FILE",
		"WIDGET_DEFAULT_PROFILE", "WIDGET_MAX_SESSIONS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 500*time.Millisecond, cfg.Widget.CloseDelay)
	require.Equal(t, time.Second, cfg.Widget.ReplyDelay)
	require.Equal(t, "support", cfg.Widget.DefaultProfile)
	require.Zero(t, cfg.Widget.MaxSessions)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)

	store, err := cfg.Widget.LoadProfiles()
	require.NoError(t, err)
	require.Equal(t, "support", store.Default().ID)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("WIDGET_CLOSE_DELAY", "250ms")
	t.Setenv("WIDGET_REPLY_DELAY", "2s")
	t.Setenv("WIDGET_MAX_SESSIONS", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	require.Equal(t, 250*time.Millisecond, cfg.Widget.Options().CloseDelay)
	require.Equal(t, 2*time.Second, cfg.Widget.Options().ReplyDelay)
	require.Equal(t, 10, cfg.Widget.MaxSessions)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":                "80 80",
		"WIDGET_CLOSE_DELAY":  "soon",
		"WIDGET_REPLY_DELAY":  "-1s",
		"WIDGET_MAX_SESSIONS": "many",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadProfilesFromFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - id: help\n    replies: [\"On it!\"]\n"), 0o600))
	t.Setenv("WIDGET_PROFILES_FILE", path)
	t.Setenv("WIDGET_DEFAULT_PROFILE", "help")

	cfg, err := Load()
	require.NoError(t, err)
	store, err := cfg.Widget.LoadProfiles()
	require.NoError(t, err)
	require.Equal(t, "help", store.Default().ID)
	require.Equal(t, []string{"On it!"}, store.Default().Replies)
}
