package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessImports_NoImports(t *testing.T) {
	css := `.panel { color: red; }`
	result := ProcessImports(css, "", nil)
	assert.Equal(t, css, result)
}

func TestProcessImports_FileImport(t *testing.T) {
	tmpDir := t.TempDir()

	partialPath := filepath.Join(tmpDir, "_custom.css")
	require.NoError(t, os.WriteFile(partialPath, []byte(`.panel { --accent: #ff0000; }`), 0644))

	mainCSS := `@import "_custom.css";
.panel-button { color: var(--accent); }`

	result := ProcessImports(mainCSS, tmpDir, nil)

	assert.Contains(t, result, "/* imported: _custom.css */")
	assert.Contains(t, result, "--accent: #ff0000")
	assert.Contains(t, result, ".panel-button")
}

func TestProcessImports_URLSyntax(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "extra.css"), []byte(".extra {}"), 0644))

	result := ProcessImports(`@import url("extra.css");`, tmpDir, nil)

	assert.Contains(t, result, "/* imported: extra.css */")
	assert.Contains(t, result, ".extra {}")
}

func TestProcessImports_CircularPrevention(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "_a.css"), []byte("@import \"_b.css\";\n.a { color: red; }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "_b.css"), []byte("@import \"_a.css\";\n.b { color: blue; }"), 0644))

	result := ProcessImports(`@import "_a.css";`, tmpDir, nil)

	assert.Contains(t, result, "circular import prevented")
	assert.Contains(t, result, ".a")
	assert.Contains(t, result, ".b")
}

func TestProcessImports_MissingPartialFallsBackToBundled(t *testing.T) {
	result := ProcessImports(`@import "_base.css";`, t.TempDir(), nil)

	assert.Contains(t, result, "/* imported (embedded): _base.css */")
	assert.Contains(t, result, ".panel-button")
}

func TestProcessImports_MissingFile(t *testing.T) {
	result := ProcessImports(`@import "nowhere.css";`, t.TempDir(), nil)
	assert.Contains(t, result, "/* import failed: nowhere.css")
}

func TestLoadStyleSheet(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "Neon", true)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_colors.css"), []byte(".neon { color: lime; }"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MainStyleSheetFile), []byte("@import \"_colors.css\";\n.panel {}"), 0644))

	d := Descriptor{Name: "Neon", Origin: OriginCustom, Root: dir}
	css, err := LoadStyleSheet(d.MainStyleSheet())
	require.NoError(t, err)
	assert.Contains(t, css, ".neon { color: lime; }")
	assert.Contains(t, css, ".panel {}")

	_, err = LoadStyleSheet(filepath.Join(dir, "missing.css"))
	assert.Error(t, err)
}
