// Package config loads service settings from .env, environment variables and
// an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xavierca1/prospector/internal/outreach"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	Store StoreConfig `yaml:"store"`
	Mail  MailConfig  `yaml:"mail"`

	RabbitMQURL string `yaml:"rabbitmq_url"`

	RateLimit       int           `yaml:"rate_limit"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	TrustProxy      bool          `yaml:"trust_proxy"`

	FlushInterval time.Duration `yaml:"flush_interval"`

	Search outreach.SearchEndpoints `yaml:"search"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"` // file | postgres
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
	Migrate     bool   `yaml:"migrate"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	NotifyTo string `yaml:"notify_to"`
}

func Default() Config {
	return Config{
		Port:            8080,
		AllowedOrigins:  []string{"http://localhost:5173"},
		Store:           StoreConfig{Driver: DriverFile, Dir: "data", Table: "kv_store", Migrate: true},
		Mail:            MailConfig{Port: 587, From: "no-reply@prospector.local"},
		RateLimit:       30,
		RateLimitWindow: time.Minute,
		FlushInterval:   30 * time.Second,
		Search:          outreach.DefaultSearchEndpoints(),
	}
}

// Load applies defaults, then the YAML file named by PROSPECTOR_CONFIG (if
// any), then environment variables. A .env in the working dir is read first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("PROSPECTOR_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.Dir, "STORE_DIR")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.Table, "KV_TABLE")
	setString(&c.RabbitMQURL, "RABBITMQ_URL")
	setString(&c.Mail.Host, "MAIL_HOST")
	setString(&c.Mail.User, "MAIL_USER")
	setString(&c.Mail.Password, "MAIL_PASS")
	setString(&c.Mail.From, "MAIL_FROM")
	setString(&c.Mail.NotifyTo, "NOTIFY_EMAIL")
	setString(&c.Search.WebSearch, "SEARCH_WEB_URL")
	setString(&c.Search.ProfileSearch, "SEARCH_PROFILE_URL")
	setString(&c.Search.EmailFinder, "SEARCH_EMAIL_FINDER_URL")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}

	for _, f := range []struct {
		env string
		dst *int
	}{
		{"PORT", &c.Port},
		{"MAIL_PORT", &c.Mail.Port},
		{"RATE_LIMIT", &c.RateLimit},
	} {
		if err := setInt(f.dst, f.env); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		env string
		dst *bool
	}{
		{"STORE_MIGRATE", &c.Store.Migrate},
		{"TRUST_PROXY", &c.TrustProxy},
	} {
		if err := setBool(f.dst, f.env); err != nil {
			return err
		}
	}

	for _, f := range []struct {
		env string
		dst *time.Duration
	}{
		{"RATE_LIMIT_WINDOW", &c.RateLimitWindow},
		{"FLUSH_INTERVAL", &c.FlushInterval},
	} {
		if err := setDuration(f.dst, f.env); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("config error: store dir is required for the file driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.Store.Driver)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 1 and 65535")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config error: rate limit must be positive")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("config error: rate limit window must be positive")
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("config error: flush interval must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config error: %s must be an integer: %w", env, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config error: %s: %w", env, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config error: %s: %w", env, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
