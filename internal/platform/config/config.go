package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	TxTimeout       time.Duration
	ShutdownTimeout time.Duration
}

// Database configures the Postgres connection. An empty URL selects the
// in-memory stores.
type Database struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the facility configuration cache. An empty URL keeps
// facility configuration in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Rules holds the tunable admission and restriction rules.
type Rules struct {
	MinVisitorAge              int
	MinRestrictionMotiveLength int
}

// Facility seeds the facility used when none is configured in storage.
// Windows uses the "MON-FRI 09:00-12:00;SAT,SUN 10:00-14:00" notation.
type Facility struct {
	Name        string
	MaxCapacity int
	Timezone    string
	Windows     string
}

type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Rules    Rules
	Facility Facility
}

const (
	DefaultMinVisitorAge              = 18
	DefaultMinRestrictionMotiveLength = 10
	DefaultTxTimeout                  = 5 * time.Second
)

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		Server: Server{
			Addr:     envOr("VISITGATE_ADDR", ":8080"),
			LogLevel: envOr("VISITGATE_LOG_LEVEL", "info"),
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Facility: Facility{
			Name:     envOr("VISITGATE_DEFAULT_FACILITY_NAME", "Main Unit"),
			Timezone: envOr("VISITGATE_DEFAULT_FACILITY_TZ", "UTC"),
			Windows:  envOr("VISITGATE_DEFAULT_FACILITY_WINDOWS", "MON-SUN 09:00-17:00"),
		},
	}

	if cfg.Server.TxTimeout, err = envDuration("VISITGATE_TX_TIMEOUT", DefaultTxTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Server.ShutdownTimeout, err = envDuration("VISITGATE_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Database.MaxOpenConns, err = envInt("VISITGATE_DB_MAX_OPEN_CONNS", 20); err != nil {
		return Config{}, err
	}
	if cfg.Database.MaxIdleConns, err = envInt("VISITGATE_DB_MAX_IDLE_CONNS", 5); err != nil {
		return Config{}, err
	}
	if cfg.Rules.MinVisitorAge, err = envInt("VISITGATE_MIN_VISITOR_AGE", DefaultMinVisitorAge); err != nil {
		return Config{}, err
	}
	if cfg.Rules.MinRestrictionMotiveLength, err = envInt("VISITGATE_MIN_RESTRICTION_MOTIVE", DefaultMinRestrictionMotiveLength); err != nil {
		return Config{}, err
	}
	if cfg.Facility.MaxCapacity, err = envInt("VISITGATE_DEFAULT_FACILITY_CAPACITY", 50); err != nil {
		return Config{}, err
	}
	if cfg.Facility.MaxCapacity <= 0 {
		return Config{}, fmt.Errorf("VISITGATE_DEFAULT_FACILITY_CAPACITY must be positive")
	}
	if cfg.Rules.MinVisitorAge < 0 {
		return Config{}, fmt.Errorf("VISITGATE_MIN_VISITOR_AGE must not be negative")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
