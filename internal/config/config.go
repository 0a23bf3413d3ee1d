// Package config loads server settings.
//
// Sources, later ones winning:
//
//  1. built-in defaults (Default)
//  2. a .env file in the working directory, if present
//  3. a YAML file (config.yaml unless a path is given)
//  4. environment variables: PORT, STORAGE, DB_PATH, DATABASE_URL,
//     LOG_LEVEL, DESCRIPTION_MIN_LENGTH
//
// The .env file only fills variables that are not already set in the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigPath = "config.yaml"
	EnvPath    = ".env"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds everything the server needs at start-up.
type Config struct {
	Port        int    `yaml:"port"`
	Storage     string `yaml:"storage"`
	DBPath      string `yaml:"dbPath"`      // SQLite file, used when Storage is "sqlite"
	DatabaseURL string `yaml:"databaseURL"` // PostgreSQL DSN, used when Storage is "postgres"
	LogLevel    string `yaml:"logLevel"`

	// DescriptionMinLength is the shortest accepted film description, in
	// characters after trimming.
	DescriptionMinLength int `yaml:"descriptionMinLength"`
}

func Default() Config {
	return Config{
		Port:     8080,
		Storage:  StorageSQLite,
		DBPath:   "data/filmorate.db",
		LogLevel: "info",
	}
}

// Load builds the configuration. An empty path means config.yaml, which may
// be absent; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := godotenv.Load(EnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", EnvPath, err)
	}

	explicit := path != ""
	if !explicit {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults and environment only
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT must be an integer, got %q", v)
		}
		cfg.Port = n
	}
	if v := os.Getenv("STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DESCRIPTION_MIN_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DESCRIPTION_MIN_LENGTH must be an integer, got %q", v)
		}
		cfg.DescriptionMinLength = n
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("config: port must be between 1 and 65535, got %d", cfg.Port)
	}
	switch cfg.Storage {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(cfg.DBPath) == "" {
			return errors.New("config: dbPath is required for sqlite storage (set in config.yaml or DB_PATH)")
		}
	case StoragePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required for postgres storage (set in config.yaml or DATABASE_URL)")
		}
	default:
		return fmt.Errorf("config: storage must be one of memory, sqlite, postgres, got %q", cfg.Storage)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.DescriptionMinLength < 0 || cfg.DescriptionMinLength > 200 {
		return fmt.Errorf("config: descriptionMinLength must be between 0 and 200, got %d", cfg.DescriptionMinLength)
	}
	return nil
}

// Level returns the slog level named by LogLevel. Load has already
// validated it, so an unknown name falls back to Info.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: logLevel must be debug, info, warn or error, got %q", name)
	}
	return level, nil
}
