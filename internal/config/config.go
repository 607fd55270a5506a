// Package config handles configuration loading for sendwallet.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/seenimoa/sendwallet/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. SENDWALLET_WALLET_CURRENCY.
const EnvPrefix = "SENDWALLET"

// MaxRateLimit caps tickers.rate_limit at ten fetches a second per source.
const MaxRateLimit = 600

// Config represents the complete application configuration.
type Config struct {
	Wallet  WalletConfig  `mapstructure:"wallet"  yaml:"wallet"`
	Tickers TickersConfig `mapstructure:"tickers" yaml:"tickers"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// WalletConfig holds the user-facing wallet settings.
type WalletConfig struct {
	Currency string `mapstructure:"currency" yaml:"currency"` // ISO 4217, e.g., "USD"
	Server   string `mapstructure:"server"   yaml:"server"`   // network id, e.g., "ethereum"
	Locale   string `mapstructure:"locale"   yaml:"locale"`   // BCP 47, e.g., "en-US"
}

// TickersConfig holds ticker source and store settings.
type TickersConfig struct {
	TTL             int          `mapstructure:"ttl"              yaml:"ttl"`              // seconds
	RefreshInterval int          `mapstructure:"refresh_interval" yaml:"refresh_interval"` // seconds
	RateLimit       int          `mapstructure:"rate_limit"       yaml:"rate_limit"`       // fetches per minute per remote source, 0 = unlimited
	Files           []string     `mapstructure:"files"            yaml:"files"`
	Feeds           []FeedConfig `mapstructure:"feeds"            yaml:"feeds"`
	Pages           []PageConfig `mapstructure:"pages"            yaml:"pages"`
	Redis           RedisConfig  `mapstructure:"redis"            yaml:"redis"`
	APIKey          string       `mapstructure:"api_key"          yaml:"api_key"`
}

// FeedConfig describes an RSS/Atom price feed.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url"  yaml:"url"`
}

// PageConfig describes an HTML price table and the selectors to scrape it.
type PageConfig struct {
	Name        string `mapstructure:"name"         yaml:"name"`
	URL         string `mapstructure:"url"          yaml:"url"`
	Currency    string `mapstructure:"currency"     yaml:"currency"`
	Row         string `mapstructure:"row"          yaml:"row"`
	Address     string `mapstructure:"address"      yaml:"address"`
	AddressAttr string `mapstructure:"address_attr" yaml:"address_attr"`
	Symbol      string `mapstructure:"symbol"       yaml:"symbol"`
	Price       string `mapstructure:"price"        yaml:"price"`
	Change      string `mapstructure:"change"       yaml:"change"`
}

// RedisConfig holds the shared ticker store connection.
type RedisConfig struct {
	URL       string `mapstructure:"url"        yaml:"url"` // e.g., "redis://localhost:6379/0"
	Password  string `mapstructure:"password"   yaml:"password"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// TTLDuration returns the ticker TTL as a duration.
func (c TickersConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// Interval returns the refresh interval as a duration.
func (c TickersConfig) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// Addr returns the host:port the API listens on.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.sendwallet/config.yaml (home directory)
//  3. /etc/sendwallet/config.yaml (system)
//
// Environment variables override config file values.
// Format: SENDWALLET_<SECTION>_<KEY>, e.g., SENDWALLET_TICKERS_API_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".sendwallet"))
	v.AddConfigPath("/etc/sendwallet")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Wallet defaults
	v.SetDefault("wallet.currency", "USD")
	v.SetDefault("wallet.server", models.Ethereum.ID)
	v.SetDefault("wallet.locale", "en-US")

	// Ticker defaults
	v.SetDefault("tickers.ttl", 300)             // 5 minutes
	v.SetDefault("tickers.refresh_interval", 60) // 1 minute
	v.SetDefault("tickers.rate_limit", 0)
	v.SetDefault("tickers.redis.key_prefix", "ticker:")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("SENDWALLET_TICKERS_API_KEY"); key != "" {
		cfg.Tickers.APIKey = key
	}
	if pw := os.Getenv("SENDWALLET_TICKERS_REDIS_PASSWORD"); pw != "" {
		cfg.Tickers.Redis.Password = pw
	}
}

// Validate checks the wallet settings and intervals.
func (c *Config) Validate() error {
	if _, err := models.ParseFiatCurrency(c.Wallet.Currency); err != nil {
		return fmt.Errorf("wallet.currency: %w", err)
	}
	if _, err := models.ServerByID(c.Wallet.Server); err != nil {
		return fmt.Errorf("wallet.server: %w", err)
	}
	if _, err := language.Parse(c.Wallet.Locale); err != nil {
		return fmt.Errorf("wallet.locale %q: %w", c.Wallet.Locale, err)
	}
	if c.Tickers.RefreshInterval <= 0 {
		return fmt.Errorf("tickers.refresh_interval must be positive, got %d", c.Tickers.RefreshInterval)
	}
	if c.Tickers.RateLimit < 0 || c.Tickers.RateLimit > MaxRateLimit {
		return fmt.Errorf("tickers.rate_limit must be between 0 and %d, got %d", MaxRateLimit, c.Tickers.RateLimit)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
