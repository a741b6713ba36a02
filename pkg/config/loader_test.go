package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc-d/open2fa/pkg/config"
)

type sampleConfig struct {
	Name    string        `env:"SAMPLE_NAME" envDefault:"default"`
	Port    int           `env:"SAMPLE_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" envDefault:"15s"`
	Tags    []string      `env:"SAMPLE_TAGS" envSeparator:","`
}

type requiredConfig struct {
	Token string `env:"SAMPLE_REQUIRED_TOKEN,required"`
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	var cfg sampleConfig
	require.NoError(t, config.Load(&cfg, config.WithEnvironment(map[string]string{})))
	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.Tags)
}

func TestLoad_Environment(t *testing.T) {
	t.Parallel()
	var cfg sampleConfig
	err := config.Load(&cfg, config.WithEnvironment(map[string]string{
		"SAMPLE_NAME":    "custom",
		"SAMPLE_PORT":    "9000",
		"SAMPLE_TIMEOUT": "2s",
		"SAMPLE_TAGS":    "a,b",
	}))
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	var nilCfg *sampleConfig
	assert.ErrorIs(t, config.Load(nilCfg), config.ErrNilPointer)

	var cfg sampleConfig
	err := config.Load(&cfg, config.WithEnvironment(map[string]string{"SAMPLE_PORT": "not-a-number"}))
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	var req requiredConfig
	err = config.Load(&req, config.WithEnvironment(map[string]string{}))
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

// Not parallel: dotenv files write to the process environment.
func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SAMPLE_FILE_ONLY=from-file\nSAMPLE_FILE_PRIORITY=from-file\n"), 0o600))
	t.Setenv("SAMPLE_FILE_PRIORITY", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("SAMPLE_FILE_ONLY") })

	var cfg struct {
		Only     string `env:"SAMPLE_FILE_ONLY"`
		Priority string `env:"SAMPLE_FILE_PRIORITY"`
	}
	require.NoError(t, config.Load(&cfg, config.WithEnvFiles(path, filepath.Join(t.TempDir(), "missing.env"))))
	assert.Equal(t, "from-file", cfg.Only)
	assert.Equal(t, "from-env", cfg.Priority, "process environment wins over the file")
}

func TestLoad_InvalidEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("SAMPLE_BAD='unterminated\n"), 0o600))

	var cfg sampleConfig
	err := config.Load(&cfg, config.WithEnvFiles(path))
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
