package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort          int           `yaml:"app_port"`
	CacheDBPath      string        `yaml:"cache_db_path"`
	CacheOpenTimeout time.Duration `yaml:"cache_open_timeout"`
	OpenAIAPIKey     string        `yaml:"openai_api_key"`
	OpenAIModel      string        `yaml:"openai_model"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	OpenAIMode       string        `yaml:"openai_mode"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	MaxUploadMB      int64         `yaml:"max_upload_mb"`
	SessionMaxAge    time.Duration `yaml:"session_max_age"`
	MaxSessions      int           `yaml:"max_sessions"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		AppPort:          8501,
		CacheDBPath:      "cache.db",
		CacheOpenTimeout: 5 * time.Second,
		OpenAIModel:      "gpt-3.5-turbo",
		OpenAIMode:       "chat",
		RequestTimeout:   60 * time.Second,
		MaxRetries:       0,
		MaxUploadMB:      32,
		SessionMaxAge:    30 * time.Minute,
		MaxSessions:      1000,
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the optional YAML file at path, and the process environment. A .env file
// in the working directory is loaded into the environment first if present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := getEnv("APP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid APP_PORT %q: %w", v, err)
		}
		c.AppPort = port
	}
	if v := getEnv("CACHE_DB_PATH"); v != "" {
		c.CacheDBPath = v
	}
	if v := getEnv("CACHE_OPEN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_OPEN_TIMEOUT %q: %w", v, err)
		}
		c.CacheOpenTimeout = d
	}
	if v := getEnv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := getEnv("OPENAI_MODEL"); v != "" {
		c.OpenAIModel = v
	}
	if v := getEnv("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := getEnv("OPENAI_MODE"); v != "" {
		c.OpenAIMode = v
	}
	if v := getEnv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.RequestTimeout = d
	}
	if v := getEnv("MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_RETRIES %q: %w", v, err)
		}
		c.MaxRetries = n
	}
	if v := getEnv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.MaxUploadMB = n
	}
	if v := getEnv("SESSION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_MAX_AGE %q: %w", v, err)
		}
		c.SessionMaxAge = d
	}
	if v := getEnv("MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_SESSIONS %q: %w", v, err)
		}
		c.MaxSessions = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.AppPort <= 0 || c.AppPort > 65535:
		return fmt.Errorf("app_port out of range: %d", c.AppPort)
	case c.CacheDBPath == "":
		return errors.New("cache_db_path is required")
	case c.CacheOpenTimeout <= 0:
		return fmt.Errorf("cache_open_timeout must be positive: %s", c.CacheOpenTimeout)
	case c.OpenAIMode != "chat" && c.OpenAIMode != "text":
		return fmt.Errorf("openai_mode must be chat or text: %q", c.OpenAIMode)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request_timeout must be positive: %s", c.RequestTimeout)
	case c.MaxRetries < 0:
		return fmt.Errorf("max_retries must not be negative: %d", c.MaxRetries)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("max_upload_mb must be positive: %d", c.MaxUploadMB)
	case c.SessionMaxAge <= 0:
		return fmt.Errorf("session_max_age must be positive: %s", c.SessionMaxAge)
	case c.MaxSessions <= 0:
		return fmt.Errorf("max_sessions must be positive: %d", c.MaxSessions)
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getEnv(key string) string {
	return os.Getenv(key)
}
