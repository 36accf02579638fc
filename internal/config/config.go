// Package config loads the environment-driven configuration for the
// embedded vector database: data paths, HNSW defaults, token signing, and
// logging. It follows the project's viper-based configuration idiom, but
// the source of truth is the process environment rather than a YAML file.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/tinyvectordb/tinyvectordb/internal/logging"
)

var log = logging.GetLogger("config")

// Config is the complete runtime configuration, bound from environment
// variables (see keys below) with a YAML file as an optional override layer.
type Config struct {
	DataPath      string `mapstructure:"data_path"`
	DBName        string `mapstructure:"db_name"`
	IndexCacheCap int    `mapstructure:"hnsw_index_cache_capacity"`
	DefaultM      int    `mapstructure:"default_m"`
	DefaultEfCons int    `mapstructure:"default_ef_construction"`
	MaxDataSize   int    `mapstructure:"hnsw_max_datasize"`
	TokenExpire   int    `mapstructure:"default_token_expire_days"`
	JWTKey        string `mapstructure:"jwt_token_key"`
	RequireAuth   bool   `mapstructure:"require_auth"`
	LogFile       string `mapstructure:"log_file"`
	LogLevel      string `mapstructure:"log_level"`
}

// envKeys maps each mapstructure field to the exact environment variable name
// spec'd for this system; viper's AutomaticEnv alone would instead expect
// upper-snake of the mapstructure tag, which already matches here, but we
// bind explicitly so the mapping is not implicit.
var envKeys = map[string]string{
	"data_path":                  "DATA_PATH",
	"db_name":                    "DB_NAME",
	"hnsw_index_cache_capacity":  "HNSW_INDEX_CACHE_CAPACITY",
	"default_m":                  "DEFAULT_M",
	"default_ef_construction":    "DEFAULT_EF_CONSTRUCTION",
	"hnsw_max_datasize":          "HNSW_MAX_DATASIZE",
	"default_token_expire_days":  "DEFAULT_TOKEN_EXPIRE_DAYS",
	"jwt_token_key":              "JWT_TOKEN_KEY",
	"require_auth":               "REQUIRE_AUTH",
	"log_file":                   "LOG_FILE",
	"log_level":                  "LOG_LEVEL",
}

// Default returns the configuration with documented defaults, matching the
// behaviour required when environment variables are absent.
func Default() *Config {
	return &Config{
		DataPath:      "./data",
		DBName:        "tinyvector.db",
		IndexCacheCap: 100,
		DefaultM:      16,
		DefaultEfCons: 100,
		MaxDataSize:   1_000_000,
		TokenExpire:   30,
		JWTKey:        "tinyvectordb-dev-secret",
		RequireAuth:   false,
		LogFile:       "",
		LogLevel:      "info",
	}
}

// Load builds configuration from the environment (with an optional
// config.yaml overlay for parity with the rest of the stack's viper usage),
// falling back field-by-field to Default() on any invalid numeric value, and
// logging each fallback exactly once.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	def := Default()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	v.SetDefault("data_path", def.DataPath)
	v.SetDefault("db_name", def.DBName)
	v.SetDefault("hnsw_index_cache_capacity", def.IndexCacheCap)
	v.SetDefault("default_m", def.DefaultM)
	v.SetDefault("default_ef_construction", def.DefaultEfCons)
	v.SetDefault("hnsw_max_datasize", def.MaxDataSize)
	v.SetDefault("default_token_expire_days", def.TokenExpire)
	v.SetDefault("jwt_token_key", def.JWTKey)
	v.SetDefault("require_auth", def.RequireAuth)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DataPath:    v.GetString("data_path"),
		DBName:      v.GetString("db_name"),
		JWTKey:      v.GetString("jwt_token_key"),
		RequireAuth: v.GetBool("require_auth"),
		LogFile:     v.GetString("log_file"),
		LogLevel:    normalizeLevel(v.GetString("log_level")),
	}
	cfg.IndexCacheCap = intOrDefault(v, "hnsw_index_cache_capacity", def.IndexCacheCap)
	cfg.DefaultM = intOrDefault(v, "default_m", def.DefaultM)
	cfg.DefaultEfCons = intOrDefault(v, "default_ef_construction", def.DefaultEfCons)
	cfg.MaxDataSize = intOrDefault(v, "hnsw_max_datasize", def.MaxDataSize)
	cfg.TokenExpire = intOrDefault(v, "default_token_expire_days", def.TokenExpire)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// intOrDefault reads key as an int, logging once and falling back to def if
// the bound value (env var or file) is present but not parseable as an int.
func intOrDefault(v *viper.Viper, key string, def int) int {
	raw := v.GetString(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid numeric config value, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return n
}

func normalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return strings.ToLower(level)
	default:
		if level != "" {
			log.Warn("invalid log level, using default", "value", level, "default", "info")
		}
		return "info"
	}
}

// Validate checks field invariants beyond simple parse-ability.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data_path is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("db_name is required")
	}
	if c.IndexCacheCap <= 0 {
		return fmt.Errorf("hnsw_index_cache_capacity must be > 0")
	}
	if c.DefaultM <= 0 {
		return fmt.Errorf("default_m must be > 0")
	}
	if c.DefaultEfCons <= 0 {
		return fmt.Errorf("default_ef_construction must be > 0")
	}
	if c.MaxDataSize <= 0 {
		return fmt.Errorf("hnsw_max_datasize must be > 0")
	}
	if c.JWTKey == "" {
		return fmt.Errorf("jwt_token_key is required")
	}
	return nil
}

// InMemory reports whether the configured database name requests an
// in-process, non-persistent SQLite database.
func (c *Config) InMemory() bool {
	return c.DBName == ":memory:"
}
