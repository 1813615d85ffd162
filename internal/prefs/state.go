package prefs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zulandar/mandi/internal/advisor"
	"github.com/zulandar/mandi/internal/i18n"
)

// ErrInvalid marks a rejected preference value.
var ErrInvalid = errors.New("invalid preference")

// State is the application state shared by request handlers. It is loaded
// once and written back through the adapter whenever it changes.
type State struct {
	adapter Adapter

	mu sync.RWMutex
	p  Preferences
}

// Load creates a State from the adapter's stored preferences.
func Load(ctx context.Context, adapter Adapter) (*State, error) {
	if adapter == nil {
		return nil, fmt.Errorf("prefs: adapter is required")
	}
	p, err := adapter.Load(ctx)
	if err != nil {
		return nil, err
	}
	p.Language = i18n.Normalize(p.Language)
	return &State{adapter: adapter, p: p}, nil
}

// Get returns a copy of the current preferences.
func (s *State) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.p)
}

// Language returns the selected language code.
func (s *State) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.Language
}

// SetLanguage selects a language. Tags are normalized to their base
// language; unsupported languages are rejected.
func (s *State) SetLanguage(ctx context.Context, tag string) error {
	lang := i18n.Normalize(tag)
	if !i18n.Supported(lang) {
		return fmt.Errorf("prefs: unsupported language %q: %w", tag, ErrInvalid)
	}
	return s.update(ctx, func(p *Preferences) bool {
		if p.Language == lang {
			return false
		}
		p.Language = lang
		return true
	})
}

// SetRole selects vendor or buyer.
func (s *State) SetRole(ctx context.Context, role string) error {
	r := advisor.Role(strings.ToLower(strings.TrimSpace(role)))
	if r != advisor.RoleVendor && r != advisor.RoleBuyer {
		return fmt.Errorf("prefs: role %q: %w", role, ErrInvalid)
	}
	return s.update(ctx, func(p *Preferences) bool {
		if p.Role == r {
			return false
		}
		p.Role = r
		return true
	})
}

// SaveListing remembers a listing ID. Saving an ID twice is a no-op.
func (s *State) SaveListing(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("prefs: listing id is required: %w", ErrInvalid)
	}
	return s.update(ctx, func(p *Preferences) bool {
		if slices.Contains(p.SavedListings, id) {
			return false
		}
		p.SavedListings = append(p.SavedListings, id)
		return true
	})
}

// update applies fn and persists the result when fn reports a change. The
// in-memory state is only replaced once the save succeeds.
func (s *State) update(ctx context.Context, fn func(*Preferences) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := clone(s.p)
	if !fn(&next) {
		return nil
	}
	if err := s.adapter.Save(ctx, next); err != nil {
		return err
	}
	s.p = next
	return nil
}
