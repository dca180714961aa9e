// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	DBPath          string `env:"DB_PATH"`
	LogFile         string `env:"LOG_FILE"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	Locale          string `env:"LOCALE"`
	ActivityMinutes int    `env:"ACTIVITY_MINUTES"`
}

const envPrefix = "EPROTOCOL_"

// Load reads an optional .env file from the working directory, then parses
// EPROTOCOL_* variables. Values from the real environment win over the file.
func Load(log *zap.Logger) (Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
		log.Debug("no .env file found, using system env")
	}
	return Parse()
}

// Parse reads EPROTOCOL_* variables only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ActivityMinutes < 0 {
		return Config{}, fmt.Errorf("parse env: %sACTIVITY_MINUTES must not be negative", envPrefix)
	}
	return cfg, nil
}

// ResolveDBPath returns the configured database path, the override when
// non-empty, or the default location.
func (c Config) ResolveDBPath(override string) (string, error) {
	switch {
	case override != "":
		return override, nil
	case c.DBPath != "":
		return c.DBPath, nil
	default:
		return DefaultDBPath()
	}
}

// DefaultDBPath returns ~/.config/eprotocol/eprotocol.db, or the platform's
// equivalent user config directory.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "eprotocol", "eprotocol.db"), nil
}
