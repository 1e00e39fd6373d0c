package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sleuth.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[static]
mock_data = "mock.json"

[runtime]
max_depth = 3
search_timeout = "500ms"
snapshot = "tree.json"

[report]
path = "out.sarif"
format = "sarif"

[rules]
disabled = ["XS007", "XS102"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mock.json", cfg.Static.MockData)
	require.NotNil(t, cfg.Runtime.MaxDepth)
	assert.Equal(t, 3, *cfg.Runtime.MaxDepth)
	assert.Equal(t, "tree.json", cfg.Runtime.Snapshot)
	assert.Equal(t, "out.sarif", cfg.Report.Path)
	assert.Equal(t, "sarif", cfg.Report.Format)
	assert.Equal(t, []string{"XS007", "XS102"}, cfg.Rules.Disabled)

	timeout, err := cfg.Runtime.SearchTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, timeout)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		description string
		content     string
	}{
		{"invalid toml", `[log`},
		{"negative depth", "[runtime]\nmax_depth = -1\n"},
		{"invalid duration", "[runtime]\nsearch_timeout = \"soon\"\n"},
		{"zero duration", "[runtime]\nsearch_timeout = \"0s\"\n"},
	}

	for _, tc := range cases {
		_, err := Load(writeConfig(t, tc.content))
		assert.Error(t, err, tc.description)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err, "explicit missing path")

	_, err = Load(t.TempDir())
	assert.Error(t, err, "directory")
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg.Runtime.MaxDepth)

	require.NoError(t, os.WriteFile(DefaultFile, []byte("[log]\nlevel = \"warn\"\n"), 0o644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidateConfigPath(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, validateConfigPath(dir))
	assert.Error(t, validateConfigPath(filepath.Join(dir, "missing.toml")))
	assert.NoError(t, validateConfigPath(writeConfig(t, "")))
}
