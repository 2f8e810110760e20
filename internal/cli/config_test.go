package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hangouts.db", cfg.Store)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Identity.Key)
}

func TestLoadConfig_ParsesAndKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"store: /var/lib/hangouts/data.db\nidentity:\n  key: deadbeef\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/hangouts/data.db", cfg.Store)
	assert.Equal(t, "deadbeef", cfg.Identity.Key)
	assert.Equal(t, "info", cfg.Log.Level, "omitted keys keep their defaults")
}

func TestLoadConfig_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
