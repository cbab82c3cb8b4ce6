// Package config loads client and server settings from defaults, an
// optional YAML file, an optional .env file and GARAGEBOARD_* variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/iudanet/garageboard/internal/client/conflict"
)

// EnvPrefix is the prefix of every environment override,
// e.g. GARAGEBOARD_MOVE_TIMEOUT for move.timeout.
const EnvPrefix = "GARAGEBOARD"

// MoveConfig holds the move pipeline limits.
type MoveConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	DoubleMoveWindow   time.Duration `mapstructure:"double_move_window"`
	BaseRetryDelay     time.Duration `mapstructure:"base_retry_delay"`
	MaxRetryDelay      time.Duration `mapstructure:"max_retry_delay"`
	MaxPending         int           `mapstructure:"max_pending"`
	MaxConcurrentPerID int           `mapstructure:"max_concurrent_per_id"`
	MaxAutoRetries     int           `mapstructure:"max_auto_retries"`
}

// ClientConfig содержит настройки CLI клиента
type ClientConfig struct {
	ServerURL      string        `mapstructure:"server_url"`
	DBPath         string        `mapstructure:"db_path"`
	LogLevel       string        `mapstructure:"log_level"`
	OnConflict     string        `mapstructure:"on_conflict"` // ask, discard, overwrite или cancel
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	LookupDebounce time.Duration `mapstructure:"lookup_debounce"`
	Move           MoveConfig    `mapstructure:"move"`
}

// ServerConfig содержит настройки сервера
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	DBPath         string        `mapstructure:"db_path"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	LogLevel       string        `mapstructure:"log_level"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	RateLimit      int           `mapstructure:"rate_limit"`
}

// OnConflictAsk means the operator is asked interactively.
const OnConflictAsk = "ask"

func clientDefaults(v *viper.Viper) {
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("db_path", "garageboard-client.db")
	v.SetDefault("log_level", "warn")
	v.SetDefault("on_conflict", OnConflictAsk)
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("lookup_debounce", 250*time.Millisecond)
	v.SetDefault("move.timeout", 5*time.Second)
	v.SetDefault("move.double_move_window", 2*time.Second)
	v.SetDefault("move.base_retry_delay", time.Second)
	v.SetDefault("move.max_retry_delay", 5*time.Second)
	v.SetDefault("move.max_pending", 10)
	v.SetDefault("move.max_concurrent_per_id", 1)
	v.SetDefault("move.max_auto_retries", 2)
}

func serverDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "garageboard.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("access_token_ttl", 12*time.Hour)
	v.SetDefault("rate_limit", 120)
	v.SetDefault("rate_window", time.Minute)
}

// LoadClient reads the client configuration. path may be empty.
func LoadClient(path string) (*ClientConfig, error) {
	v, err := newViper(path, clientDefaults)
	if err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode client config: %w", err)
	}
	cfg.OnConflict = strings.ToLower(strings.TrimSpace(cfg.OnConflict))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer reads the server configuration. path may be empty.
func LoadServer(path string) (*ServerConfig, error) {
	v, err := newViper(path, serverDefaults)
	if err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper(path string, defaults func(*viper.Viper)) (*viper.Viper, error) {
	// .env не обязателен; переменные окружения процесса имеют приоритет
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return v, nil
}

// Validate rejects unusable client settings.
func (c *ClientConfig) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive")
	}
	if c.LookupDebounce < 0 {
		return errors.New("lookup_debounce must not be negative")
	}
	if c.OnConflict != OnConflictAsk {
		if _, err := conflict.ParseChoice(c.OnConflict); err != nil {
			return fmt.Errorf("on_conflict: %w", err)
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	m := c.Move
	switch {
	case m.Timeout <= 0:
		return errors.New("move.timeout must be positive")
	case m.DoubleMoveWindow < 0:
		return errors.New("move.double_move_window must not be negative")
	case m.BaseRetryDelay <= 0 || m.MaxRetryDelay < m.BaseRetryDelay:
		return errors.New("move retry delays must be positive and max must not be below base")
	case m.MaxPending <= 0:
		return errors.New("move.max_pending must be positive")
	case m.MaxConcurrentPerID <= 0:
		return errors.New("move.max_concurrent_per_id must be positive")
	case m.MaxAutoRetries < 0:
		return errors.New("move.max_auto_retries must not be negative")
	}
	return nil
}

// Validate rejects unusable server settings.
func (c *ServerConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("access_token_ttl must be positive")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return errors.New("rate_limit and rate_window must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a log_level value into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}
