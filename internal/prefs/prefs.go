// Package prefs holds user preferences (language, role, saved listings) and
// persists them as one JSON blob under a fixed key.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zulandar/mandi/internal/advisor"
	"github.com/zulandar/mandi/internal/i18n"
	"github.com/zulandar/mandi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageKey names the preference blob.
const StorageKey = "mandi-storage"

// Preferences is the persisted preference set.
type Preferences struct {
	Language      string       `json:"language"`
	Role          advisor.Role `json:"role,omitempty"`
	SavedListings []string     `json:"saved_listings,omitempty"`
}

// Defaults returns the preferences of a first-time user.
func Defaults() Preferences {
	return Preferences{Language: i18n.Default}
}

// Adapter loads and saves Preferences.
type Adapter interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
}

// GormAdapter stores preferences in the preferences table.
type GormAdapter struct {
	db  *gorm.DB
	key string
}

// NewGormAdapter creates a GormAdapter using StorageKey.
func NewGormAdapter(db *gorm.DB) (*GormAdapter, error) {
	if db == nil {
		return nil, fmt.Errorf("prefs: db is required")
	}
	return &GormAdapter{db: db, key: StorageKey}, nil
}

// Load returns the stored preferences, or Defaults if none are stored.
func (a *GormAdapter) Load(ctx context.Context) (Preferences, error) {
	var row models.Preference
	err := a.db.WithContext(ctx).Where("name = ?", a.key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("prefs: load %s: %w", a.key, err)
	}
	p := Defaults()
	if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
		return Preferences{}, fmt.Errorf("prefs: decode %s: %w", a.key, err)
	}
	return p, nil
}

// Save writes p, replacing what was stored.
func (a *GormAdapter) Save(ctx context.Context, p Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("prefs: encode %s: %w", a.key, err)
	}
	row := models.Preference{Name: a.key, Data: string(data)}
	result := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("prefs: save %s: %w", a.key, result.Error)
	}
	return nil
}

// MemoryAdapter keeps preferences in memory.
type MemoryAdapter struct {
	mu    sync.Mutex
	p     *Preferences
	Saves int
}

// Load implements Adapter.
func (m *MemoryAdapter) Load(context.Context) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p == nil {
		return Defaults(), nil
	}
	return clone(*m.p), nil
}

// Save implements Adapter.
func (m *MemoryAdapter) Save(_ context.Context, p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := clone(p)
	m.p = &c
	m.Saves++
	return nil
}

func clone(p Preferences) Preferences {
	p.SavedListings = slices.Clone(p.SavedListings)
	return p
}
