package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ScanOrdersBuiltinsFirst(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()

	writeBundle(t, builtin, "Dark", true)
	writeBundle(t, builtin, "Light", true)
	writeBundle(t, custom, "Neon", true)
	writeBundle(t, custom, "Dark", true)

	store := NewStore(builtin, custom, nil)
	catalog := store.Scan()

	require.Len(t, catalog, 4)
	assert.Equal(t, OriginBuiltin, catalog[0].Origin)
	assert.Equal(t, OriginBuiltin, catalog[1].Origin)
	assert.Equal(t, OriginCustom, catalog[2].Origin)
	assert.Equal(t, OriginCustom, catalog[3].Origin)
	assert.ElementsMatch(t, []string{"Dark", "Light"}, catalog[:2].Names())
	assert.ElementsMatch(t, []string{"Dark", "Neon"}, catalog[2:].Names())
}

func TestStore_ScanIgnoresFilesAndIncludesIncompleteBundles(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()

	writeBundle(t, builtin, "Dark", true)
	require.NoError(t, os.WriteFile(filepath.Join(builtin, "README.md"), []byte("docs"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(custom, "Empty"), 0755))

	catalog := NewStore(builtin, custom, nil).Scan()

	assert.Equal(t, []string{"Dark", "Empty"}, catalog.Names())
	empty, ok := catalog.Lookup("Empty")
	require.True(t, ok)
	assert.NotEmpty(t, empty.Check())
}

func TestStore_ScanCreatesMissingCustomDir(t *testing.T) {
	builtin := t.TempDir()
	writeBundle(t, builtin, "Light", true)
	custom := filepath.Join(t.TempDir(), "powerpanel", "custom_theme")

	catalog := NewStore(builtin, custom, nil).Scan()

	assert.Equal(t, []string{"Light"}, catalog.Names())
	info, err := os.Stat(custom)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_ScanMissingBuiltinDir(t *testing.T) {
	custom := t.TempDir()
	writeBundle(t, custom, "Neon", true)

	catalog := NewStore(filepath.Join(t.TempDir(), "nope"), custom, nil).Scan()

	require.Len(t, catalog, 1)
	assert.Equal(t, "Neon", catalog[0].Name)
	assert.True(t, catalog[0].IsCustom())
}

func TestStore_ScanReflectsFilesystemChanges(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()
	store := NewStore(builtin, custom, nil)

	assert.Empty(t, store.Scan())

	writeBundle(t, custom, "Neon", true)
	assert.Equal(t, []string{"Neon"}, store.Scan().Names())

	require.NoError(t, os.RemoveAll(filepath.Join(custom, "Neon")))
	assert.Empty(t, store.Scan())
}

func TestStore_Resolve(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()
	writeBundle(t, builtin, "Dark", true)
	writeBundle(t, custom, "Dark", true)

	store := NewStore(builtin, custom, nil)

	d, ok := store.Resolve("Dark")
	require.True(t, ok)
	assert.Equal(t, OriginBuiltin, d.Origin)
	assert.Equal(t, filepath.Join(builtin, "Dark"), d.Root)

	_, ok = store.Resolve("Ghost")
	assert.False(t, ok)
}

func TestStore_ScanFollowsSymlinkedBundles(t *testing.T) {
	builtin := t.TempDir()
	custom := t.TempDir()
	elsewhere := t.TempDir()
	target := writeBundle(t, elsewhere, "Linked", true)
	require.NoError(t, os.Symlink(target, filepath.Join(custom, "Linked")))

	catalog := NewStore(builtin, custom, nil).Scan()

	assert.Equal(t, []string{"Linked"}, catalog.Names())
}
