package theme

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// LoadStyleSheet reads a stylesheet and inlines its @import statements.
// GTK CSS providers loaded from a string cannot follow relative imports.
func LoadStyleSheet(path string) (string, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ProcessImports(string(css), filepath.Dir(path), nil), nil
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir.
// The seen map prevents circular imports.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		importPath := submatch[1]

		var fullPath string
		if filepath.IsAbs(importPath) {
			fullPath = importPath
		} else {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		importedCSS, err := os.ReadFile(fullPath)
		if err != nil {
			// Partials (leading underscore) fall back to the bundled copy so
			// custom themes can build on the shipped base rules.
			baseName := filepath.Base(importPath)
			if strings.HasPrefix(baseName, "_") {
				if partial, found := bundledPartial(baseName); found {
					return "/* imported (embedded): " + importPath + " */\n" + partial
				}
			}
			return "/* import failed: " + importPath + " - " + err.Error() + " */"
		}

		processed := ProcessImports(string(importedCSS), filepath.Dir(fullPath), seen)
		return "/* imported: " + importPath + " */\n" + processed
	})
}

// bundledPartial returns the first embedded partial with the given file name.
func bundledPartial(name string) (string, bool) {
	for _, bundle := range ListBundled() {
		data, err := fs.ReadFile(bundledFS, path.Join("bundled", bundle, name))
		if err == nil {
			return string(data), true
		}
	}
	return "", false
}
