package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./cache", cfg.Wiki.CacheDir)
	assert.Equal(t, "https://de.wiktionary.org", cfg.Wiki.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
wiki:
  dump_file: /data/dewiktionary.xml
  cache_dir: /data/cache
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("DEWIKTIO_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/dewiktionary.xml", cfg.Wiki.DumpFile)
	assert.Equal(t, "/data/cache", cfg.Wiki.CacheDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wiki:\n  cache_dir: /from/yaml\n"), 0o644))
	t.Setenv("DEWIKTIO_CONFIG", path)
	t.Setenv("WIKI_CACHE_DIR", "/from/env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Wiki.CacheDir)
}

func TestLoadExplicitMissingFileIsError(t *testing.T) {
	t.Setenv("DEWIKTIO_CONFIG", "/does/not/exist.yaml")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Wiki: WikiConfig{CacheDir: "./cache", BaseURL: "https://de.wiktionary.org"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"empty cache dir", func(c *Config) { c.Wiki.CacheDir = "" }, true},
		{"empty base url", func(c *Config) { c.Wiki.BaseURL = "" }, true},
		{"dsn with zero max conns", func(c *Config) { c.Database.DSN = "postgres://x" }, true},
		{
			"dsn with sane pool",
			func(c *Config) {
				c.Database.DSN = "postgres://x"
				c.Database.MaxConns = 5
				c.Database.MinConns = 1
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
