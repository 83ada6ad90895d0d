package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/vinnote-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, "https://vinnote-api.up.railway.app/api/v1", c.GetBaseURL())
	require.Equal(t, 20, c.GetFeedPageSize())
	require.Equal(t, 1500*time.Millisecond, c.GetFeedDebounce())
	require.Equal(t, 15*time.Second, c.GetFeedCooldown())
	require.Equal(t, "DEV", c.GetEnv())
	require.NotEmpty(t, c.GetCredentialsPath())
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("VINNOTE_API_URL", "http://localhost:3000/api/v1/")
	t.Setenv("VINNOTE_FEED_PAGE_SIZE", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000/api/v1", c.GetBaseURL())
	require.Equal(t, 5, c.GetFeedPageSize())
	require.Equal(t, "debug", c.GetLogLevel())
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vinnote.yaml")
	content := []byte("api:\n  base_url: http://staging.local/api/v1\nfeed:\n  cooldown: 30s\nstorage:\n  path: /tmp/creds.json\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://staging.local/api/v1", c.GetBaseURL())
	require.Equal(t, 30*time.Second, c.GetFeedCooldown())
	require.Equal(t, "/tmp/creds.json", c.GetCredentialsPath())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
