package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dogs_webapp/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	AppPort     string
	AppVersion  string
	Storage     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	DailyBonusesPath  string
	DayOffset         time.Duration
	DailyResetEnabled bool

	// Rate limits
	APIRateLimit     int
	APIRateWindow    time.Duration
	PlayerRateLimit  int
	PlayerRateWindow time.Duration

	AllowedOrigin string
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds the configuration from a lookup function, os.Getenv in
// production.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:           stringOr(getenv("APP_PORT"), "8080"),
		AppVersion:        stringOr(getenv("APP_VERSION"), "dev"),
		Storage:           strings.ToLower(stringOr(getenv("STORAGE"), StoragePostgres)),
		DatabaseURL:       getenv("DATABASE_URL"),
		RedisAddr:         getenv("REDIS_ADDR"),
		RedisPassword:     getenv("REDIS_PASSWORD"),
		LogLevel:          stringOr(getenv("LOG_LEVEL"), "info"),
		LogJSON:           getenv("LOG_JSON") == "true",
		DailyBonusesPath:  getenv("DAILY_BONUSES_PATH"),
		DailyResetEnabled: getenv("DAILY_RESET_ENABLED") != "false",
		AllowedOrigin:     getenv("ALLOWED_ORIGIN"),
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	var err error
	if cfg.RedisDB, err = intOr(getenv, "REDIS_DB", 0, 0); err != nil {
		return nil, err
	}

	offset, err := intOr(getenv, "DAY_OFFSET_HOURS", 4, -12)
	if err != nil {
		return nil, err
	}
	if offset > 14 {
		return nil, fmt.Errorf("DAY_OFFSET_HOURS out of range: %d", offset)
	}
	cfg.DayOffset = time.Duration(offset) * time.Hour

	if cfg.APIRateLimit, err = intOr(getenv, "API_RATE_LIMIT", 120, 1); err != nil {
		return nil, err
	}
	apiWindow, err := intOr(getenv, "API_RATE_WINDOW_SECONDS", 60, 1)
	if err != nil {
		return nil, err
	}
	cfg.APIRateWindow = time.Duration(apiWindow) * time.Second

	if cfg.PlayerRateLimit, err = intOr(getenv, "PLAYER_RATE_LIMIT", 60, 1); err != nil {
		return nil, err
	}
	playerWindow, err := intOr(getenv, "PLAYER_RATE_WINDOW_SECONDS", 60, 1)
	if err != nil {
		return nil, err
	}
	cfg.PlayerRateWindow = time.Duration(playerWindow) * time.Second

	return cfg, nil
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(getenv func(string) string, key string, def, lowest int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < lowest {
		return 0, fmt.Errorf("%s must be >= %d, got %d", key, lowest, n)
	}
	return n, nil
}
