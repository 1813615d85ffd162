package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/zulandar/mandi/internal/advisor"
	"github.com/zulandar/mandi/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormAdapter_RoundTrip(t *testing.T) {
	db := testDB(t)
	a, err := NewGormAdapter(db)
	if err != nil {
		t.Fatalf("NewGormAdapter: %v", err)
	}
	ctx := context.Background()

	p, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if p.Language != "en" || p.Role != "" {
		t.Errorf("defaults = %+v", p)
	}

	want := Preferences{Language: "ta", Role: advisor.RoleVendor, SavedListings: []string{"a", "b"}}
	if err := a.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want.Language = "hi"
	if err := a.Save(ctx, want); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Language != "hi" || got.Role != advisor.RoleVendor || len(got.SavedListings) != 2 {
		t.Errorf("Load = %+v, want %+v", got, want)
	}

	var count int64
	db.Model(&models.Preference{}).Count(&count)
	if count != 1 {
		t.Errorf("preference rows = %d, want 1", count)
	}
	var row models.Preference
	db.First(&row)
	if row.Name != StorageKey {
		t.Errorf("row name = %q, want %q", row.Name, StorageKey)
	}
}

func TestGormAdapter_CorruptBlob(t *testing.T) {
	db := testDB(t)
	db.Create(&models.Preference{Name: StorageKey, Data: "{not json"})
	a, _ := NewGormAdapter(db)
	if _, err := a.Load(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}

func TestNewGormAdapter_RequiresDB(t *testing.T) {
	if _, err := NewGormAdapter(nil); err == nil {
		t.Error("expected error without db")
	}
}

func TestState_PersistsOnChange(t *testing.T) {
	ctx := context.Background()
	mem := &MemoryAdapter{}
	s, err := Load(ctx, mem)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.SetLanguage(ctx, "hi-IN"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if s.Language() != "hi" {
		t.Errorf("Language = %q, want hi", s.Language())
	}
	if err := s.SetLanguage(ctx, "hi"); err != nil {
		t.Fatalf("SetLanguage same: %v", err)
	}
	if mem.Saves != 1 {
		t.Errorf("saves = %d, want 1 (unchanged language is not saved)", mem.Saves)
	}

	if err := s.SetRole(ctx, "Buyer"); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if err := s.SaveListing(ctx, "x1"); err != nil {
		t.Fatalf("SaveListing: %v", err)
	}
	if err := s.SaveListing(ctx, "x1"); err != nil {
		t.Fatalf("SaveListing twice: %v", err)
	}
	if mem.Saves != 3 {
		t.Errorf("saves = %d, want 3", mem.Saves)
	}

	reloaded, _ := Load(ctx, mem)
	got := reloaded.Get()
	if got.Language != "hi" || got.Role != advisor.RoleBuyer || len(got.SavedListings) != 1 {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestState_Rejects(t *testing.T) {
	ctx := context.Background()
	mem := &MemoryAdapter{}
	s, _ := Load(ctx, mem)

	if err := s.SetLanguage(ctx, "fr"); !errors.Is(err, ErrInvalid) {
		t.Errorf("SetLanguage(fr) error = %v, want ErrInvalid", err)
	}
	if err := s.SetRole(ctx, "broker"); err == nil {
		t.Error("expected error for invalid role")
	}
	if err := s.SaveListing(ctx, ""); err == nil {
		t.Error("expected error for empty listing id")
	}
	if mem.Saves != 0 {
		t.Errorf("saves = %d, want 0", mem.Saves)
	}
}

type failingAdapter struct{ MemoryAdapter }

func (f *failingAdapter) Save(context.Context, Preferences) error {
	return errors.New("disk full")
}

func TestState_FailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	s, _ := Load(ctx, &failingAdapter{})
	if err := s.SetLanguage(ctx, "ta"); err == nil {
		t.Fatal("expected save error")
	}
	if s.Language() != "en" {
		t.Errorf("Language = %q, want en after failed save", s.Language())
	}
}

func TestState_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := Load(ctx, &MemoryAdapter{})
	s.SaveListing(ctx, "a")
	p := s.Get()
	p.SavedListings[0] = "mutated"
	if s.Get().SavedListings[0] != "a" {
		t.Error("Get exposed internal slice")
	}
}
