package open2fa

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cc-d/open2fa/pkg/config"
	"github.com/cc-d/open2fa/pkg/logger"
	"github.com/cc-d/open2fa/pkg/remote"
	"github.com/cc-d/open2fa/pkg/totp"
)

const (
	DefaultAPIURL  = "https://open2fa.liberfy.ai/api/v1"
	DefaultDirName = ".open2fa"
)

// Config holds everything a Manager needs. LoadConfig fills it from the
// environment; callers then override fields with explicit values, which
// gives the precedence explicit > environment > identity file > default.
type Config struct {
	Dir       string        `env:"OPEN2FA_DIR"`
	UUID      string        `env:"OPEN2FA_UUID"`
	APIURL    string        `env:"OPEN2FA_API_URL" envDefault:"https://open2fa.liberfy.ai/api/v1"`
	Timeout   time.Duration `env:"OPEN2FA_TIMEOUT" envDefault:"15s"`
	Interval  int           `env:"OPEN2FA_INTERVAL" envDefault:"30"`
	LogLevel  string        `env:"OPEN2FA_LOG_LEVEL" envDefault:"warn"`
	LogFormat string        `env:"OPEN2FA_LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads Config from the environment (and a .env file in the
// working directory, if any) and fills in defaults.
func LoadConfig(opts ...config.Option) (Config, error) {
	var cfg Config
	if err := config.Load(&cfg, opts...); err != nil {
		return Config{}, err
	}
	return cfg.normalize()
}

// DefaultDir returns ~/.open2fa.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Join(ErrInvalidConfig, err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// NewLogger builds the logger described by LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	format, err := logger.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(w),
	), nil
}

// normalize fills defaults, expands a leading ~ in Dir and validates the
// result. It is idempotent.
func (c Config) normalize() (Config, error) {
	c.Dir = strings.TrimSpace(c.Dir)
	if c.Dir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Config{}, err
		}
		c.Dir = dir
	} else if c.Dir == "~" || strings.HasPrefix(c.Dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, errors.Join(ErrInvalidConfig, err)
		}
		c.Dir = filepath.Join(home, strings.TrimPrefix(c.Dir, "~"))
	}

	c.UUID = strings.TrimSpace(c.UUID)

	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("%w: api url %q", ErrInvalidConfig, c.APIURL)
	}

	if c.Timeout <= 0 {
		c.Timeout = remote.DefaultTimeout
	}
	if c.Interval < 1 {
		c.Interval = totp.DefaultPeriod
	}
	return c, nil
}
