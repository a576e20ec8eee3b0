package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol-indexer/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "tmp/.symindex", cfg.StorePath)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.UseGitignore)
	assert.Contains(t, cfg.Extensions, ".cpp")
	assert.Contains(t, cfg.Exclude, "node_modules")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("INDEXER_WORKERS", "9")
	t.Setenv("INDEXER_CONFIGURATIONS", "debug:DEBUG;release:NDEBUG")
	t.Setenv("INDEXER_EXTENSIONS", ".cpp,.h")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Workers)
	assert.Equal(t, []string{".cpp", ".h"}, cfg.Extensions)
	parts, err := cfg.BuildConfigurations()
	require.NoError(t, err)
	assert.Len(t, parts, 2)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.WriteFile(".env", []byte("INDEXER_STORE_PATH=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("INDEXER_STORE_PATH") })

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.StorePath)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{StorePath: "x", Workers: 1, Configurations: "debug", LogLevel: "info"}
	}
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
		errIs   error
	}{
		{name: "Valid Config", mutate: func(*config.Config) {}},
		{name: "In memory without path", mutate: func(c *config.Config) { c.StorePath = ""; c.InMemory = true }},
		{name: "Missing StorePath", mutate: func(c *config.Config) { c.StorePath = "" }, wantErr: true, errIs: config.ErrMissingRequired},
		{name: "Zero workers", mutate: func(c *config.Config) { c.Workers = 0 }, wantErr: true, errIs: config.ErrMissingRequired},
		{name: "No configurations", mutate: func(c *config.Config) { c.Configurations = " ; " }, wantErr: true, errIs: config.ErrMissingRequired},
		{name: "Duplicate configuration", mutate: func(c *config.Config) { c.Configurations = "a;a" }, wantErr: true, errIs: config.ErrInvalidConfiguration},
		{name: "Bad log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseConfigurations(t *testing.T) {
	got, err := config.ParseConfigurations(" debug : DEBUG, TRACE=2 ;release:NDEBUG;plain")
	require.NoError(t, err)
	assert.Equal(t, []config.Configuration{
		{Name: "debug", Defines: []string{"DEBUG", "TRACE=2"}},
		{Name: "release", Defines: []string{"NDEBUG"}},
		{Name: "plain"},
	}, got)

	_, err = config.ParseConfigurations(":X")
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}
