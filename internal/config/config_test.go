package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", FileName))
	require.NoError(t, err)
	assert.Empty(t, cfg.AccessToken)
	assert.Empty(t, cfg.RateLimits)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDirName, FileName)

	in := &Config{
		AccessToken: "ya29.secret",
		RateLimits: map[string]RateLimitOverride{
			"drive": {RequestsPerUserPerMinute: 120, BurstSize: 4},
		},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.AccessToken, out.AccessToken)
	assert.Equal(t, in.RateLimits, out.RateLimits)
}

func TestSave_RestrictsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDirName, FileName)
	require.NoError(t, Save(path, &Config{AccessToken: "secret"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())
}

func TestClientConfig(t *testing.T) {
	cfg := &Config{
		AccessToken: "tok",
		RateLimits: map[string]RateLimitOverride{
			"sheets": {RequestsPerUserPerMinute: 30, BurstSize: 2, WindowSeconds: 30},
		},
	}

	t.Run("override applied for matching API", func(t *testing.T) {
		cc := cfg.ClientConfig("sheets")
		assert.Equal(t, "tok", cc.AccessToken)
		require.NotNil(t, cc.RateLimit)
		assert.Equal(t, 30, cc.RateLimit.RequestsPerUserPerMinute)
		assert.Equal(t, 2, cc.RateLimit.BurstSize)
		assert.Equal(t, 30*time.Second, cc.RateLimit.Window)
	})

	t.Run("no override for other APIs", func(t *testing.T) {
		cc := cfg.ClientConfig("drive")
		assert.Equal(t, "tok", cc.AccessToken)
		assert.Nil(t, cc.RateLimit)
	})
}
