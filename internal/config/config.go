package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"torgmailru/client/internal/apierrors"
)

const envPrefix = "TORGMAILRU"

// Config holds all configuration for the application
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Crawl    CrawlConfig    `mapstructure:"crawl"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig holds catalog API connection settings
type APIConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	AccessToken          string        `mapstructure:"access_token"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRetries           int           `mapstructure:"max_retries"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	Proxies              []string      `mapstructure:"proxies"`

	// Cooldown after the API answers 429 Too Many Requests
	CircuitBreakerCooldown time.Duration `mapstructure:"circuit_breaker_cooldown"`
}

// CacheConfig controls the optional Redis response cache in front of the API
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN renders the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CrawlConfig drives the listing crawler
type CrawlConfig struct {
	Resources     []ResourceConfig `mapstructure:"resources"`
	MaxWorkers    int              `mapstructure:"max_workers"`
	MaxItems      int              `mapstructure:"max_items"`
	MaxAttempts   int              `mapstructure:"max_attempts"`
	ConsumerGroup string           `mapstructure:"consumer_group"`
	MinIdleTime   time.Duration    `mapstructure:"min_idle_time"`
}

// ResourceConfig is one listing resource to crawl, with its query parameters
type ResourceConfig struct {
	Path   string            `mapstructure:"path"`
	Params map[string]string `mapstructure:"params"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml from the given directories (the working directory
// when none are given) and applies TORGMAILRU_* environment overrides, e.g.
// TORGMAILRU_API_ACCESS_TOKEN. A missing file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// Validate checks the settings every API request depends on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.AccessToken) == "" {
		return apierrors.ErrNoAccessToken
	}
	if c.API.BaseURL == "" {
		return apierrors.NewConfigError("api.base_url is empty", nil)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://content.api.torg.mail.ru/2.0")
	v.SetDefault("api.access_token", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 0)
	v.SetDefault("api.max_requests_per_second", 5)
	v.SetDefault("api.proxies", []string{})
	v.SetDefault("api.circuit_breaker_cooldown", 5*time.Minute)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.key_prefix", "torgmailru:cache:")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "torgmailru")
	v.SetDefault("database.user", "torgmailru")
	v.SetDefault("database.password", "torgmailru")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("crawl.max_workers", 4)
	v.SetDefault("crawl.max_items", 10000)
	v.SetDefault("crawl.max_attempts", 3)
	v.SetDefault("crawl.consumer_group", "torgmailru_crawler")
	v.SetDefault("crawl.min_idle_time", 2*time.Minute)

	v.SetDefault("log.level", "info")
}
