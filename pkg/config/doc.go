// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for optional .env files and
// github.com/caarlos0/env/v11 for tag-driven parsing:
//
//	type Config struct {
//		Dir     string        `env:"OPEN2FA_DIR"`
//		Timeout time.Duration `env:"OPEN2FA_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Nothing is cached: every call re-reads the environment, so callers can
// apply explicit overrides on top of the result. Tests pass WithEnvironment
// to avoid touching the process environment.
package config
