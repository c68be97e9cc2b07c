package theme

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Store discovers theme bundles in a built-in root and a user custom root.
// It keeps no state between scans so every call reflects the filesystem.
type Store struct {
	logger     *slog.Logger
	builtinDir string
	customDir  string
}

// NewStore creates a store over the two theme roots.
func NewStore(builtinDir, customDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:     logger,
		builtinDir: builtinDir,
		customDir:  customDir,
	}
}

// BuiltinDir returns the built-in theme root.
func (s *Store) BuiltinDir() string {
	return s.builtinDir
}

// CustomDir returns the user custom theme root.
func (s *Store) CustomDir() string {
	return s.customDir
}

// EnsureCustomDir creates the custom theme root if it doesn't exist.
// Failure is logged and otherwise ignored.
func (s *Store) EnsureCustomDir() {
	if s.customDir == "" {
		return
	}
	if _, err := os.Stat(s.customDir); err == nil {
		return
	}
	if err := os.MkdirAll(s.customDir, 0755); err != nil {
		s.logger.Warn("failed to create custom theme directory", "path", s.customDir, "error", err)
		return
	}
	s.logger.Info("created custom theme directory", "path", s.customDir)
}

// Scan enumerates both roots and returns a fresh catalog.
// Every immediate subdirectory is a theme; asset files are not checked here.
func (s *Store) Scan() Catalog {
	var catalog Catalog

	builtin, err := readBundles(s.builtinDir, OriginBuiltin)
	if err != nil {
		s.logger.Warn("builtin theme folder not readable", "path", s.builtinDir, "error", err)
	}
	catalog = append(catalog, builtin...)

	s.EnsureCustomDir()
	custom, err := readBundles(s.customDir, OriginCustom)
	if err != nil {
		s.logger.Warn("custom theme folder not readable", "path", s.customDir, "error", err)
	}
	catalog = append(catalog, custom...)

	s.logger.Debug("scanned themes",
		"builtin", catalog.Count(OriginBuiltin),
		"custom", catalog.Count(OriginCustom),
		"names", catalog.Names(),
	)
	return catalog
}

// Resolve scans and returns the first theme with the given name.
func (s *Store) Resolve(name string) (Descriptor, bool) {
	return s.Scan().Lookup(name)
}

// readBundles lists the immediate subdirectories of root as descriptors.
// A missing or empty root path yields no descriptors.
func readBundles(root string, origin Origin) ([]Descriptor, error) {
	if root == "" {
		return nil, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	var bundles []Descriptor
	for _, entry := range entries {
		full := filepath.Join(abs, entry.Name())
		if !isDir(entry, full) {
			continue
		}
		bundles = append(bundles, Descriptor{
			Name:   entry.Name(),
			Origin: origin,
			Root:   full,
		})
	}
	return bundles, nil
}

// isDir reports whether the entry is a directory, following symlinks.
func isDir(entry os.DirEntry, full string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}
