package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/config"
	"github.com/zulandar/mandi/internal/models"
)

func TestDBCmd_Help(t *testing.T) {
	out, err := runCmd(t, "db", "--help")
	if err != nil {
		t.Fatalf("db --help failed: %v", err)
	}
	if !strings.Contains(out, "Database management") {
		t.Errorf("expected help to mention 'Database management', got: %s", out)
	}
	if !strings.Contains(out, "init") || !strings.Contains(out, "reset") {
		t.Errorf("expected help to list init and reset, got: %s", out)
	}
}

func TestDBInitCmd_Help(t *testing.T) {
	out, err := runCmd(t, "db", "init", "--help")
	if err != nil {
		t.Fatalf("db init --help failed: %v", err)
	}
	if !strings.Contains(out, "--config") || !strings.Contains(out, "mandi.yaml") {
		t.Errorf("expected --config flag defaulting to mandi.yaml, got: %s", out)
	}
}

func TestDBInitCmd_MissingConfig(t *testing.T) {
	_, err := runCmd(t, "db", "init", "--config", "/nonexistent/mandi.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestDBInitCmd_SQLite(t *testing.T) {
	path := writeSQLiteConfig(t)
	out, err := runCmd(t, "db", "init", "--config", path)
	if err != nil {
		t.Fatalf("db init: %v\n%s", err, out)
	}
	for _, want := range []string{"driver sqlite", "Migrated 4 tables", "Seeded 6 listings", "initialized successfully"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Seeding is idempotent.
	if _, err := runCmd(t, "db", "init", "--config", path); err != nil {
		t.Fatalf("second db init: %v", err)
	}
	cfg, gormDB, err := connectFromConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	store, _ := catalog.NewStore(gormDB)
	list, err := store.List(context.Background(), "", catalog.FilterAll)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(cfg.Listings) {
		t.Errorf("listings = %d, want %d", len(list), len(cfg.Listings))
	}
}

func TestDBResetCmd_Aborted(t *testing.T) {
	path := writeSQLiteConfig(t)
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader("no\n"))
	cmd.SetArgs([]string{"db", "reset", "--config", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("db reset: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WARNING") || !strings.Contains(out, "Aborted.") {
		t.Errorf("expected warning and abort, got: %s", out)
	}
}

func TestDBResetCmd_Yes(t *testing.T) {
	path := writeSQLiteConfig(t)
	if _, err := runCmd(t, "db", "init", "--config", path); err != nil {
		t.Fatal(err)
	}
	_, gormDB, err := connectFromConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	extra := models.Commodity{Name: "Mangoes", Quantity: "20 kg", Price: 90}
	store, _ := catalog.NewStore(gormDB)
	if err := store.Add(context.Background(), &extra); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "db", "reset", "--config", path, "--yes")
	if err != nil {
		t.Fatalf("db reset: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Dropped 4 tables") || !strings.Contains(out, "reset and re-initialized") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := store.Get(context.Background(), extra.ID); err == nil {
		t.Error("listing added before reset should be gone")
	}
}

func TestNeedsAdmin(t *testing.T) {
	tests := []struct {
		cfg  config.DatabaseConfig
		want bool
	}{
		{config.DatabaseConfig{Driver: config.DriverMySQL}, true},
		{config.DatabaseConfig{Driver: config.DriverMySQL, DSN: "u@tcp(h)/x"}, false},
		{config.DatabaseConfig{Driver: config.DriverPostgres}, false},
		{config.DatabaseConfig{Driver: config.DriverSQLite}, false},
	}
	for _, tt := range tests {
		if got := needsAdmin(tt.cfg); got != tt.want {
			t.Errorf("needsAdmin(%+v) = %v, want %v", tt.cfg, got, tt.want)
		}
	}
}
