// Package config provides YAML-based configuration loading for Mandi.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/zulandar/mandi/internal/i18n"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "mandi.yaml"

// Environment variables that override file settings. Secrets are only read
// from the environment (or a .env file next to the config).
const (
	EnvDBDSN            = "MANDI_DB_DSN"
	EnvDBPassword       = "MANDI_DB_PASSWORD"
	EnvPort             = "MANDI_PORT"
	EnvSlackToken       = "MANDI_SLACK_TOKEN"
	EnvDiscordToken     = "MANDI_DISCORD_TOKEN"
	EnvTranslatorAPIKey = "MANDI_TRANSLATOR_API_KEY"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the top-level Mandi configuration, loaded from mandi.yaml.
type Config struct {
	VendorLanguage string            `yaml:"vendor_language"`
	Database       DatabaseConfig    `yaml:"database"`
	Server         ServerConfig      `yaml:"server"`
	Negotiation    NegotiationConfig `yaml:"negotiation"`
	Translator     TranslatorConfig  `yaml:"translator"`
	Voice          VoiceConfig       `yaml:"voice"`
	Notify         NotifyConfig      `yaml:"notify"`
	Listings       []ListingConfig   `yaml:"listings"`
}

// DatabaseConfig holds connection settings. DSN, when set, is passed to the
// driver as-is and the other fields are ignored.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"` // database name, or file path for sqlite
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	DSN      string `yaml:"dsn"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS; empty allows any origin
}

// NegotiationConfig tunes negotiation sessions.
type NegotiationConfig struct {
	ReplyDelay    time.Duration `yaml:"reply_delay"`
	AcceptDelay   time.Duration `yaml:"accept_delay"`
	PriceStep     int           `yaml:"price_step"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

// TranslatorConfig selects the remote translator. An empty endpoint keeps
// the built-in phrase table.
type TranslatorConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"`
}

// VoiceConfig selects the speech gateway. An empty endpoint uses the echo
// recognizer.
type VoiceConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// NotifyConfig names the channels deals are announced in.
type NotifyConfig struct {
	SlackChannel   string `yaml:"slack_channel"`
	DiscordChannel string `yaml:"discord_channel"`
	SlackToken     string `yaml:"-"`
	DiscordToken   string `yaml:"-"`
}

// ListingConfig is a demo listing seeded into the market board.
type ListingConfig struct {
	Name     string `yaml:"name"`
	Quantity string `yaml:"quantity"`
	Location string `yaml:"location"`
	Price    int    `yaml:"price"`
	Vendor   string `yaml:"vendor"`
}

// DefaultListings is the market board used when the config lists none.
var DefaultListings = []ListingConfig{
	{Name: "Tomatoes", Quantity: "100 kg", Location: "Nashik", Price: 40, Vendor: "Ramesh Patil"},
	{Name: "Onions", Quantity: "250 kg", Location: "Nashik", Price: 32, Vendor: "Sunita Pawar"},
	{Name: "Potatoes", Quantity: "300 kg", Location: "Pune", Price: 28, Vendor: "Vijay Jadhav"},
	{Name: "Rice", Quantity: "500 kg", Location: "Delhi", Price: 50, Vendor: "Harpreet Singh"},
	{Name: "Wheat", Quantity: "400 kg", Location: "Bangalore", Price: 33, Vendor: "Lakshmi Rao"},
	{Name: "Cotton", Quantity: "150 kg", Location: "Mumbai", Price: 66, Vendor: "Anil Deshmukh"},
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load reads a YAML config file from path and returns a validated Config.
// A .env file in the same directory, if present, is loaded into the
// environment first; variables already set are not overwritten.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config, applying environment
// overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDBDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: not a port number", EnvPort, v)
		}
		c.Server.Port = port
	}
	c.Notify.SlackToken = os.Getenv(EnvSlackToken)
	c.Notify.DiscordToken = os.Getenv(EnvDiscordToken)
	c.Translator.APIKey = os.Getenv(EnvTranslatorAPIKey)
	return nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.VendorLanguage == "" {
		c.VendorLanguage = "hi"
	}
	c.VendorLanguage = i18n.Normalize(c.VendorLanguage)

	db := &c.Database
	db.Driver = strings.ToLower(db.Driver)
	if db.Driver == "" {
		db.Driver = DriverMySQL
	}
	switch db.Driver {
	case DriverMySQL:
		if db.Host == "" {
			db.Host = "127.0.0.1"
		}
		if db.Port == 0 {
			db.Port = 3306
		}
		if db.User == "" {
			db.User = "root"
		}
		if db.Name == "" {
			db.Name = "mandi"
		}
	case DriverPostgres:
		if db.Host == "" {
			db.Host = "127.0.0.1"
		}
		if db.Port == 0 {
			db.Port = 5432
		}
		if db.User == "" {
			db.User = "postgres"
		}
		if db.Name == "" {
			db.Name = "mandi"
		}
	case DriverSQLite:
		if db.Name == "" {
			db.Name = "mandi.db"
		}
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	n := &c.Negotiation
	if n.ReplyDelay == 0 {
		n.ReplyDelay = 2 * time.Second
	}
	if n.AcceptDelay == 0 {
		n.AcceptDelay = 1500 * time.Millisecond
	}
	if n.PriceStep == 0 {
		n.PriceStep = 2
	}
	if n.IdleTimeout == 0 {
		n.IdleTimeout = 30 * time.Minute
	}
	if n.SweepSchedule == "" {
		n.SweepSchedule = "*/5 * * * *"
	}

	if c.Listings == nil {
		c.Listings = append([]ListingConfig(nil), DefaultListings...)
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if !i18n.Supported(c.VendorLanguage) {
		errs = append(errs, fmt.Sprintf("vendor_language %q is not supported", c.VendorLanguage))
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be one of mysql, postgres, sqlite", c.Database.Driver))
	}
	if c.Database.Port < 0 {
		errs = append(errs, "database.port must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	for _, o := range c.Server.AllowedOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Sprintf("server.allowed_origins %q must be an http(s) origin", o))
		}
	}

	n := c.Negotiation
	if n.ReplyDelay < 0 {
		errs = append(errs, "negotiation.reply_delay must not be negative")
	}
	if n.AcceptDelay < 0 {
		errs = append(errs, "negotiation.accept_delay must not be negative")
	}
	if n.PriceStep < 0 {
		errs = append(errs, "negotiation.price_step must not be negative")
	}
	if n.IdleTimeout < 0 {
		errs = append(errs, "negotiation.idle_timeout must not be negative")
	}
	if _, err := cronParser.Parse(n.SweepSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("negotiation.sweep_schedule %q: %v", n.SweepSchedule, err))
	}

	if c.Notify.SlackChannel != "" && c.Notify.SlackToken == "" {
		errs = append(errs, "notify.slack_channel requires "+EnvSlackToken)
	}
	if c.Notify.DiscordChannel != "" && c.Notify.DiscordToken == "" {
		errs = append(errs, "notify.discord_channel requires "+EnvDiscordToken)
	}

	for i, l := range c.Listings {
		if strings.TrimSpace(l.Name) == "" {
			errs = append(errs, fmt.Sprintf("listings[%d].name is required", i))
		}
		if l.Price <= 0 {
			errs = append(errs, fmt.Sprintf("listings[%d].price must be positive", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
