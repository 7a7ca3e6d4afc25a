package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/argcall/internal/errors"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	content := `directories: ["./internal/..."]
output_file: zz_callables.go
typecheck: false
workers: 3
skip_dirs: [generated, legacy]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"./internal/..."}, config.Directories)
	assert.Equal(t, "zz_callables.go", config.OutputFile)
	assert.False(t, config.TypeCheck)
	assert.Equal(t, 3, config.Workers)
	assert.Equal(t, []string{"generated", "legacy"}, config.SkipDirs)
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	config, err := LoadConfig(filepath.Join(dir, DefaultConfigFile), false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
	assert.Equal(t, "autogen_argcall.go", config.OutputFile)
	assert.True(t, config.TypeCheck)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	config, err = LoadConfig(empty, true)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("workers: 1\n"), 0o644))
	config, err = LoadConfig(partial, true)
	require.NoError(t, err)
	assert.Equal(t, 1, config.Workers)
	assert.True(t, config.TypeCheck, "unset keys keep their defaults")
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"), true)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ConfigurationErrorCode))

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("outputs: x.go\n"), 0o644))
	_, err = LoadConfig(unknown, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("workers: 0\n"), 0o644))
	_, err = LoadConfig(invalid, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be at least 1")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"no directories", func(c *Config) { c.Directories = nil }, "no directories"},
		{"empty output", func(c *Config) { c.OutputFile = "" }, "cannot be empty"},
		{"output in subdirectory", func(c *Config) { c.OutputFile = "gen/out.go" }, "plain .go file name"},
		{"output not go", func(c *Config) { c.OutputFile = "out.txt" }, "plain .go file name"},
		{"output test file", func(c *Config) { c.OutputFile = "out_test.go" }, "cannot be a test file"},
		{"bad skip pattern", func(c *Config) { c.SkipDirs = []string{"mocks[", "legacy"} }, `skip_dirs entry "mocks[" is not a valid pattern`},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	config := DefaultConfig()
	config.SkipDirs = []string{"**/mocks", "internal/legacy"}
	assert.NoError(t, config.Validate())
}
