package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	defaultConfigFile = "config.yaml"
)

// Config holds the server settings. Values come from an optional YAML file
// overlaid by environment variables of the same (upper-cased) name.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     int

	Gemini GeminiConfig
	Upload UploadConfig
	Cache  CacheConfig

	CORSOrigins   []string
	ChatRateLimit float64
	ChatRateBurst int
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type UploadConfig struct {
	Dir                 string
	MaxSize             int64
	ParseTimeout        time.Duration
	MaxRecords          int
	MaxConcurrentParses int64
	SweepInterval       time.Duration
	MaxAge              time.Duration
}

type CacheConfig struct {
	Backend         string
	RedisAddr       string
	RedisPassword   string
	SummaryTTL      time.Duration
	ConversationTTL time.Duration
}

var defaults = map[string]any{
	"app_env":               "development",
	"log_level":             "info",
	"port":                  8000,
	"gemini_api_key":        "",
	"gemini_model":          "gemini-pro",
	"gemini_base_url":       "https://generativelanguage.googleapis.com/v1beta",
	"gemini_timeout":        "60s",
	"upload_dir":            "uploads",
	"max_upload_size":       "100MB",
	"parse_timeout":         "30s",
	"max_records":           0,
	"max_concurrent_parses": 4,
	"upload_sweep_interval": "10m",
	"upload_max_age":        "1h",
	"cache_backend":         CacheBackendMemory,
	"redis_host":            "localhost",
	"redis_port":            "6379",
	"redis_password":        "",
	"summary_ttl":           "0s",
	"conversation_ttl":      "0s",
	"cors_origins":          "http://localhost:8080,http://localhost:3000",
	"chat_rate_limit":       1.0,
	"chat_rate_burst":       5,
}

// Load reads CONFIG_FILE (or ./config.yaml when present) and the environment.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := readFile(v, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func readFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	maxSize, err := humanize.ParseBytes(v.GetString("max_upload_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE %q: %w", v.GetString("max_upload_size"), err)
	}

	cfg := &Config{
		AppEnv:   v.GetString("app_env"),
		LogLevel: v.GetString("log_level"),
		Port:     v.GetInt("port"),
		Gemini: GeminiConfig{
			APIKey:  v.GetString("gemini_api_key"),
			Model:   v.GetString("gemini_model"),
			BaseURL: strings.TrimRight(v.GetString("gemini_base_url"), "/"),
			Timeout: v.GetDuration("gemini_timeout"),
		},
		Upload: UploadConfig{
			Dir:                 v.GetString("upload_dir"),
			MaxSize:             int64(maxSize),
			ParseTimeout:        v.GetDuration("parse_timeout"),
			MaxRecords:          v.GetInt("max_records"),
			MaxConcurrentParses: v.GetInt64("max_concurrent_parses"),
			SweepInterval:       v.GetDuration("upload_sweep_interval"),
			MaxAge:              v.GetDuration("upload_max_age"),
		},
		Cache: CacheConfig{
			Backend:         strings.ToLower(v.GetString("cache_backend")),
			RedisAddr:       net.JoinHostPort(v.GetString("redis_host"), v.GetString("redis_port")),
			RedisPassword:   v.GetString("redis_password"),
			SummaryTTL:      v.GetDuration("summary_ttl"),
			ConversationTTL: v.GetDuration("conversation_ttl"),
		},
		CORSOrigins:   splitList(v.GetString("cors_origins")),
		ChatRateLimit: v.GetFloat64("chat_rate_limit"),
		ChatRateBurst: v.GetInt("chat_rate_burst"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid PORT %d", c.Port)
	case c.Upload.MaxSize <= 0:
		return errors.New("MAX_UPLOAD_SIZE must be positive")
	case c.Upload.MaxConcurrentParses < 1:
		return errors.New("MAX_CONCURRENT_PARSES must be at least 1")
	case c.Upload.MaxRecords < 0:
		return errors.New("MAX_RECORDS must not be negative")
	case c.Upload.SweepInterval < 0 || c.Upload.MaxAge < 0:
		return errors.New("UPLOAD_SWEEP_INTERVAL and UPLOAD_MAX_AGE must not be negative")
	case c.Cache.Backend != CacheBackendMemory && c.Cache.Backend != CacheBackendRedis:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	case c.ChatRateLimit <= 0 || c.ChatRateBurst < 1:
		return errors.New("CHAT_RATE_LIMIT and CHAT_RATE_BURST must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
