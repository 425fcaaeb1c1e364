package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Schema)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadWithConfigFile(t *testing.T) {
	chdirTemp(t)

	content := "schema: ./person.proto\nformat: yaml\n"
	require.NoError(t, os.WriteFile(".unibuf.yaml", []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./person.proto", cfg.Schema)
	assert.Equal(t, "yaml", cfg.Format)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	chdirTemp(t)

	require.NoError(t, os.WriteFile(".unibuf.yaml", []byte("format: xml\n"), 0o644))

	_, err := Load()
	require.Error(t, err)
}
