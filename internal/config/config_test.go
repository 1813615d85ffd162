package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullYAML = `
vendor_language: ta
database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  name: mandi_test
  user: app
server:
  port: 9000
negotiation:
  reply_delay: 500ms
  accept_delay: 250ms
  price_step: 3
  idle_timeout: 10m
  sweep_schedule: "*/1 * * * *"
notify:
  slack_channel: C123
listings:
  - name: Onions
    quantity: 200 kg
    location: Nashik
    price: 32
    vendor: Mahesh
`

func TestParse_FullConfig(t *testing.T) {
	t.Setenv(EnvSlackToken, "xoxb-test")
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VendorLanguage != "ta" {
		t.Errorf("VendorLanguage = %q, want %q", cfg.VendorLanguage, "ta")
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "10.0.0.5" || cfg.Database.Port != 3307 {
		t.Errorf("Database = %s:%d, want 10.0.0.5:3307", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.User != "app" || cfg.Database.Name != "mandi_test" {
		t.Errorf("Database user/name = %q/%q", cfg.Database.User, cfg.Database.Name)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	n := cfg.Negotiation
	if n.ReplyDelay != 500*time.Millisecond || n.AcceptDelay != 250*time.Millisecond {
		t.Errorf("delays = %v/%v, want 500ms/250ms", n.ReplyDelay, n.AcceptDelay)
	}
	if n.PriceStep != 3 || n.IdleTimeout != 10*time.Minute || n.SweepSchedule != "*/1 * * * *" {
		t.Errorf("Negotiation = %+v", n)
	}
	if cfg.Notify.SlackChannel != "C123" || cfg.Notify.SlackToken != "xoxb-test" {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if len(cfg.Listings) != 1 || cfg.Listings[0].Name != "Onions" || cfg.Listings[0].Price != 32 {
		t.Errorf("Listings = %+v", cfg.Listings)
	}
}

func TestParse_EmptyConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.VendorLanguage != "hi" {
		t.Errorf("VendorLanguage = %q, want hi", cfg.VendorLanguage)
	}
	db := cfg.Database
	if db.Driver != DriverMySQL || db.Host != "127.0.0.1" || db.Port != 3306 || db.User != "root" || db.Name != "mandi" {
		t.Errorf("Database defaults = %+v", db)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	n := cfg.Negotiation
	if n.ReplyDelay != 2*time.Second || n.AcceptDelay != 1500*time.Millisecond || n.PriceStep != 2 {
		t.Errorf("Negotiation defaults = %+v", n)
	}
	if n.IdleTimeout != 30*time.Minute || n.SweepSchedule != "*/5 * * * *" {
		t.Errorf("sweeper defaults = %v %q", n.IdleTimeout, n.SweepSchedule)
	}
	if len(cfg.Listings) != len(DefaultListings) {
		t.Errorf("len(Listings) = %d, want %d", len(cfg.Listings), len(DefaultListings))
	}
}

func TestParse_DriverDefaults(t *testing.T) {
	tests := []struct {
		driver string
		port   int
		user   string
		name   string
	}{
		{"postgres", 5432, "postgres", "mandi"},
		{"SQLite", 0, "", "mandi.db"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg, err := Parse([]byte("database:\n  driver: " + tt.driver + "\n"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			db := cfg.Database
			if db.Port != tt.port || db.User != tt.user || db.Name != tt.name {
				t.Errorf("Database = %+v, want port %d user %q name %q", db, tt.port, tt.user, tt.name)
			}
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDBDSN, "root:pw@tcp(db:3306)/mandi")
	t.Setenv(EnvDBPassword, "s3cret")
	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvDiscordToken, "discord-token")
	t.Setenv(EnvTranslatorAPIKey, "key")

	cfg, err := Parse([]byte("server:\n  port: 9000\nnotify:\n  discord_channel: D1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN != "root:pw@tcp(db:3306)/mandi" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("Password = %q", cfg.Database.Password)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 from env", cfg.Server.Port)
	}
	if cfg.Notify.DiscordToken != "discord-token" || cfg.Translator.APIKey != "key" {
		t.Errorf("secrets not loaded: %+v %+v", cfg.Notify, cfg.Translator)
	}
}

func TestParse_BadEnvPort(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	if _, err := Parse(nil); err == nil || !strings.Contains(err.Error(), EnvPort) {
		t.Errorf("error = %v, want %s error", err, EnvPort)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	t.Setenv(EnvSlackToken, "")
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad driver", "database:\n  driver: oracle\n", "database.driver"},
		{"bad vendor language", "vendor_language: fr\n", "vendor_language"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad origin", "server:\n  allowed_origins: [localhost:3000]\n", "server.allowed_origins"},
		{"negative delay", "negotiation:\n  reply_delay: -1s\n", "reply_delay"},
		{"negative step", "negotiation:\n  price_step: -2\n", "price_step"},
		{"bad schedule", "negotiation:\n  sweep_schedule: every minute\n", "sweep_schedule"},
		{"slack without token", "notify:\n  slack_channel: C1\n", EnvSlackToken},
		{"listing without name", "listings:\n  - price: 10\n", "listings[0].name"},
		{"listing without price", "listings:\n  - name: Rice\n", "listings[0].price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestParse_MultipleValidationErrors(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: oracle\nserver:\n  port: -1\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("errors should be joined with '; ': %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("{{invalid"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want config: parse prefix", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/mandi.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want config: read prefix", err)
	}
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mandi.yaml")
	if err := os.WriteFile(path, []byte("notify:\n  slack_channel: C9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvSlackToken+"=xoxb-from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Registers cleanup of the variable godotenv sets.
	t.Setenv(EnvSlackToken, "")
	os.Unsetenv(EnvSlackToken)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notify.SlackToken != "xoxb-from-file" {
		t.Errorf("SlackToken = %q, want value from .env", cfg.Notify.SlackToken)
	}
}

// --- Fixture-based tests using testdata/ files ---

func TestLoad_FullFixture(t *testing.T) {
	cfg, err := Load("testdata/valid_full.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.Port != 5433 {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Translator.Endpoint != "http://translate.internal:5000" {
		t.Errorf("Translator.Endpoint = %q", cfg.Translator.Endpoint)
	}
	if cfg.Voice.Endpoint != "http://speech.internal:8000" {
		t.Errorf("Voice.Endpoint = %q", cfg.Voice.Endpoint)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://mandi.example.in" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if len(cfg.Listings) != 2 {
		t.Fatalf("len(Listings) = %d, want 2", len(cfg.Listings))
	}
}

func TestLoad_MinimalFixture(t *testing.T) {
	cfg, err := Load("testdata/valid_minimal.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Name != "mandi.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoad_InvalidListingFixture(t *testing.T) {
	_, err := Load("testdata/invalid_listing.yaml")
	if err == nil || !strings.Contains(err.Error(), "listings[0]") {
		t.Errorf("error = %v, want listings[0] error", err)
	}
}

func TestLoad_InvalidYAMLFixture(t *testing.T) {
	if _, err := Load("testdata/invalid_yaml.yaml"); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv(EnvDBDSN, "")
	cfg, err := Load("../../mandi.example.yaml")
	if err != nil {
		t.Fatalf("example config: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite || len(cfg.Listings) != 3 {
		t.Errorf("Database.Driver = %q, listings = %d", cfg.Database.Driver, len(cfg.Listings))
	}
}
