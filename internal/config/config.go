package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/cmatteri/wxplot/internal/store"
)

type AppConfig struct {
	Port string

	DB store.DBConfig

	// Timezone governs local-wall-clock interval boundaries.
	Timezone *time.Location

	// Bindings maps a request binding name to its archive table.
	Bindings map[string]string

	// Series cache tuning.
	CacheTTL        time.Duration
	CacheMaxEntries int64

	// StatsInterval controls the periodic archive-stats job; 0 disables it.
	StatsInterval time.Duration

	LogDir   string
	LogLevel zapcore.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.DB = store.DBConfig{
		Host:     getenvDefault("DB_HOST", "localhost"),
		Port:     getenvDefault("DB_PORT", "5432"),
		User:     getenvDefault("DB_USER", "weewx"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getenvDefault("DB_NAME", "weewx"),
		SSLMode:  getenvDefault("DB_SSLMODE", "disable"),
	}

	tzName := getenvDefault("TIMEZONE", "Local")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	bindings, err := parseBindings(getenvDefault("BINDINGS", "wx_binding:archive"))
	if err != nil {
		return nil, err
	}
	cfg.Bindings = bindings

	ttlStr := getenvDefault("CACHE_TTL", "2m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl
	cfg.CacheMaxEntries = int64(getenvInt("CACHE_MAX_ENTRIES", 1024))

	statsStr := getenvDefault("STATS_INTERVAL", "15m")
	statsInterval, err := time.ParseDuration(statsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL: %w", err)
	}
	cfg.StatsInterval = statsInterval

	cfg.LogDir = os.Getenv("LOG_DIR")

	levelStr := getenvDefault("LOG_LEVEL", "info")
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

// parseBindings parses "name:table" pairs separated by commas.
func parseBindings(s string) (map[string]string, error) {
	bindings := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		name, table, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || table == "" {
			return nil, fmt.Errorf("invalid binding %q; want name:table", pair)
		}
		bindings[name] = table
	}
	return bindings, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
