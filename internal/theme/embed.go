package theme

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// bundledFS contains the theme bundles shipped with the binary.
//
//go:embed all:bundled
var bundledFS embed.FS

// Bundled theme names. These match the names the selection defaults use.
const (
	DarkThemeName  = "Dark"
	LightThemeName = "Light"
)

// ListBundled returns the names of all embedded bundles.
func ListBundled() []string {
	entries, err := fs.ReadDir(bundledFS, "bundled")
	if err != nil {
		return []string{DarkThemeName, LightThemeName}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// IsBundled checks if a theme name is embedded in the binary.
func IsBundled(name string) bool {
	info, err := fs.Stat(bundledFS, path.Join("bundled", name))
	return err == nil && info.IsDir()
}

// BundledFile returns the content of a file inside an embedded bundle.
func BundledFile(name, file string) ([]byte, bool) {
	data, err := bundledFS.ReadFile(path.Join("bundled", name, file))
	if err != nil {
		return nil, false
	}
	return data, true
}

// InstallBundled writes every embedded bundle that is missing from dir.
// Existing bundle directories are left untouched. Returns the names installed.
func InstallBundled(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create theme directory: %w", err)
	}

	var installed []string
	for _, name := range ListBundled() {
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := extractBundle(name, target); err != nil {
			return installed, fmt.Errorf("failed to install theme %s: %w", name, err)
		}
		installed = append(installed, name)
	}
	return installed, nil
}

// extractBundle copies one embedded bundle to target.
func extractBundle(name, target string) error {
	root := path.Join("bundled", name)
	return fs.WalkDir(bundledFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, filepath.FromSlash(p))
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0755)
		}

		data, err := bundledFS.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0644)
	})
}
