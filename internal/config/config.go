package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverRod      = "rod"
	DriverChromedp = "chromedp"
)

type Config struct {
	// Port maps to PORT.
	Port string `envconfig:"PORT" default:"3000"`

	ParserConfig
	Browser   BrowserConfig   `envconfig:"BROWSER"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	NATS      NATSConfig      `envconfig:"NATS"`
	Telemetry TelemetryConfig `envconfig:"OTEL"`
	Log       LogConfig       `envconfig:"LOG"`
}

// Nested fields use split_words instead of envconfig tags: a tag would make
// envconfig fall back to the unprefixed name (REDIS_PORT -> PORT).

type ParserConfig struct {
	BaseURL  string `envconfig:"BASE_URL" default:"https://www.upwork.com"`
	PageSize int    `envconfig:"PAGE_SIZE" default:"50"`

	// MaxConcurrentScrapes caps simultaneous browser instances. Zero means unlimited.
	MaxConcurrentScrapes int64 `envconfig:"MAX_CONCURRENT_SCRAPES" default:"0"`
}

type BrowserConfig struct {
	Driver    string        `split_words:"true" default:"rod"`
	Headless  bool          `split_words:"true" default:"true"`
	Timeout   time.Duration `split_words:"true" default:"30s"`
	IdleTime  time.Duration `split_words:"true" default:"500ms"`
	UserAgent string        `split_words:"true" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"`
	Bin       string        `split_words:"true"`
}

// RedisConfig configures the listing archive. An empty Host disables it.
type RedisConfig struct {
	Host     string        `split_words:"true"`
	Port     string        `split_words:"true" default:"6379"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true" default:"0"`
	TTL      time.Duration `split_words:"true" default:"24h"`
}

// NATSConfig configures scrape event publishing. An empty URL disables it.
type NATSConfig struct {
	URL         string        `split_words:"true"`
	Subject     string        `split_words:"true" default:"jobs.scraped"`
	ConnTimeout time.Duration `split_words:"true" default:"10s"`
}

type TelemetryConfig struct {
	CollectorURL string `split_words:"true"`
	ServiceName  string `split_words:"true" default:"upwork-scraper"`
}

type LogConfig struct {
	Development bool `split_words:"true" default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.ParserConfig.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.ParserConfig.PageSize)
	}
	if c.ParserConfig.MaxConcurrentScrapes < 0 {
		return fmt.Errorf("MAX_CONCURRENT_SCRAPES must not be negative, got %d", c.ParserConfig.MaxConcurrentScrapes)
	}
	switch c.Browser.Driver {
	case DriverRod, DriverChromedp:
	default:
		return fmt.Errorf("unknown BROWSER_DRIVER %q", c.Browser.Driver)
	}
	return nil
}

// RedisAddr returns host:port for the archive, or "" when disabled.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
