package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Default selections, one per OS color scheme.
const (
	DefaultDarkTheme  = "Dark"
	DefaultDarkColor  = "rgba(0,0,0,0.5)"
	DefaultLightTheme = "Light"
	DefaultLightColor = "rgba(255,255,255,0.7)"
)

// Selection is the persisted theme choice.
// This is persisted to ~/.config/powerpanel/config.json
type Selection struct {
	ActiveThemeName string `json:"theme"`
	AccentColor     string `json:"mainColor"` // Opaque CSS color string
}

// DefaultSelection returns the selection used when no document exists.
func DefaultSelection(dark bool) Selection {
	if dark {
		return Selection{ActiveThemeName: DefaultDarkTheme, AccentColor: DefaultDarkColor}
	}
	return Selection{ActiveThemeName: DefaultLightTheme, AccentColor: DefaultLightColor}
}

// SelectionStore reads and writes the selection document.
type SelectionStore struct {
	mu     sync.Mutex
	logger *slog.Logger
	path   string
	dark   func() bool
}

// NewSelectionStore creates a store for the document at path.
// dark reports the OS dark preference and is only consulted when the
// document is missing or unreadable. A nil dark means light.
func NewSelectionStore(path string, dark func() bool, logger *slog.Logger) *SelectionStore {
	if logger == nil {
		logger = slog.Default()
	}
	if dark == nil {
		dark = func() bool { return false }
	}
	return &SelectionStore{
		logger: logger,
		path:   path,
		dark:   dark,
	}
}

// Path returns the document path.
func (s *SelectionStore) Path() string {
	return s.path
}

// Load returns the persisted selection. It never fails: a missing document
// is replaced by the OS default and written out, while an unreadable or
// corrupt document yields the default and is left untouched on disk.
// Fields are returned as parsed, empty strings included.
func (s *SelectionStore) Load() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		def := DefaultSelection(s.dark())
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("no selection document, writing default",
				"path", s.path, "theme", def.ActiveThemeName, "color", def.AccentColor)
			if err := s.write(def); err != nil {
				s.logger.Warn("failed to persist default selection", "path", s.path, "error", err)
			}
			return def
		}
		s.logger.Warn("failed to read selection document, using default", "path", s.path, "error", err)
		return def
	}

	var sel *Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		s.logger.Warn("selection document is corrupt, using default", "path", s.path, "error", err)
		return DefaultSelection(s.dark())
	}
	if sel == nil {
		s.logger.Warn("selection document is null, using default", "path", s.path)
		return DefaultSelection(s.dark())
	}
	// Missing fields stay empty; an object is never merged with the default.
	return *sel
}

// Save overwrites the document with sel.
func (s *SelectionStore) Save(sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(sel)
}

// write replaces the document atomically via a temp file.
func (s *SelectionStore) write(sel Selection) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace selection: %w", err)
	}
	return nil
}
