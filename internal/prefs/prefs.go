// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prefs persists the process-wide preferences object. The store
// loads once at startup, hands out snapshots, and writes the file back
// atomically on every mutation. Export and import treat the whole object
// as one opaque, round-trippable document.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

// Store owns the preferences singleton. Safe for concurrent use.
type Store struct {
	path     string
	validate *validator.Validate

	mu    sync.RWMutex
	prefs types.Preferences
}

// Open loads preferences from path. A missing file is not an error; the
// store starts from the built-in defaults and creates the file on the
// first mutation.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("prefs: empty path")
	}

	s := &Store{
		path:     path,
		validate: validator.New(),
		prefs:    types.DefaultPreferences(),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	var p types.Preferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w: %v", types.ErrMalformedPayload, err)
	}
	if err := s.validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("invalid preferences in %s: %w", path, err)
	}
	s.prefs = p
	return s, nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Get returns a snapshot of the current preferences.
func (s *Store) Get() types.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePrefs(s.prefs)
}

// SetSourceEnabled toggles a source on or off.
func (s *Store) SetSourceEnabled(name string, enabled bool) error {
	return s.mutate(func(p *types.Preferences) error {
		src := p.Source(name)
		if src == nil {
			return types.NewNotFoundError("source", name)
		}
		src.Enabled = enabled
		return nil
	})
}

// SetSourcePriority reorders a source. Lower numbers dispatch first and
// win merge precedence.
func (s *Store) SetSourcePriority(name string, priority int) error {
	return s.mutate(func(p *types.Preferences) error {
		src := p.Source(name)
		if src == nil {
			return types.NewNotFoundError("source", name)
		}
		src.Priority = priority
		return nil
	})
}

// SetSourceMaxResults caps one source's contribution. Zero restores the
// equal split of the overall cap.
func (s *Store) SetSourceMaxResults(name string, max int) error {
	return s.mutate(func(p *types.Preferences) error {
		src := p.Source(name)
		if src == nil {
			return types.NewNotFoundError("source", name)
		}
		src.MaxResults = max
		return nil
	})
}

// SetSearch replaces the stored search defaults.
func (s *Store) SetSearch(sp types.SearchPreferences) error {
	return s.mutate(func(p *types.Preferences) error {
		p.Search = sp
		return nil
	})
}

// SetDisplay replaces the stored display settings.
func (s *Store) SetDisplay(dp types.DisplayPreferences) error {
	return s.mutate(func(p *types.Preferences) error {
		p.Display = dp
		return nil
	})
}

// SetCache replaces the stored cache settings.
func (s *Store) SetCache(cp types.CachePreferences) error {
	return s.mutate(func(p *types.Preferences) error {
		p.Cache = cp
		return nil
	})
}

// Reset restores the built-in defaults and writes them back.
func (s *Store) Reset() error {
	return s.mutate(func(p *types.Preferences) error {
		*p = types.DefaultPreferences()
		return nil
	})
}

// Export renders the current preferences as one YAML document.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := yaml.Marshal(&s.prefs)
	if err != nil {
		return nil, fmt.Errorf("marshaling preferences: %w", err)
	}
	return data, nil
}

// Import replaces the current preferences with a previously exported
// document. The document is validated before anything is persisted.
func (s *Store) Import(data []byte) error {
	var p types.Preferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing preferences: %w: %v", types.ErrMalformedPayload, err)
	}
	return s.mutate(func(dst *types.Preferences) error {
		*dst = clonePrefs(p)
		return nil
	})
}

// mutate applies fn to a copy, validates the result, persists it, and
// only then makes it visible. A failed write leaves the in-memory state
// untouched.
func (s *Store) mutate(fn func(*types.Preferences) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clonePrefs(s.prefs)
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.validate.Struct(&next); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

// save writes the preferences file atomically via a temp file rename.
func (s *Store) save(p types.Preferences) error {
	data, err := yaml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".prefs-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing preferences: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func clonePrefs(p types.Preferences) types.Preferences {
	out := p
	out.Sources = append([]types.SourcePreference(nil), p.Sources...)
	return out
}
