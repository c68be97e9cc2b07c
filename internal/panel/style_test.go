package panel

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/theme"
)

func TestAccentCSS(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  string
	}{
		{"rgba", "rgba(0,0,0,0.5)", ".panel {\n  background-color: rgba(0,0,0,0.5);\n}\n"},
		{"hex trimmed", "  #ff8800 ", ".panel {\n  background-color: #ff8800;\n}\n"},
		{"empty", "", ""},
		{"only separators", ";}", ""},
		{"declaration breakers dropped", "red; } * { color: blue", ".panel {\n  background-color: red  *  color: blue;\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accentCSS(tt.color))
		})
	}
}

func TestReadStyleSheet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_base.css"), []byte(".panel { padding: 4px; }"), 0644))
	main := filepath.Join(dir, "main.css")
	require.NoError(t, os.WriteFile(main, []byte("@import \"_base.css\";\n.panel { color: red; }"), 0644))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	css := readStyleSheet(main, logger)
	assert.Contains(t, css, "padding: 4px")
	assert.Contains(t, css, "color: red")
	assert.NotContains(t, css, "@import")

	assert.Equal(t, "", readStyleSheet(filepath.Join(dir, "animation.css"), logger))
	assert.Contains(t, buf.String(), "stylesheet missing")

	assert.Equal(t, "", readStyleSheet("", logger))
}

func TestButtonClassAndIcons(t *testing.T) {
	assert.Equal(t, "Power", buttonClass(action.Shutdown))
	assert.Equal(t, "Restart", buttonClass(action.Restart))
	assert.Equal(t, "Sleep", buttonClass(action.Sleep))

	for i, a := range action.All {
		assert.Equal(t, theme.IconNames[i], iconFor(a))
	}
	assert.Equal(t, "", iconFor(action.Action("dance")))
}

func TestLayerFor(t *testing.T) {
	assert.Equal(t, layershell.LayerShellLayerOverlay, layerFor("overlay"))
	assert.Equal(t, layershell.LayerShellLayerTop, layerFor("top"))
	assert.Equal(t, layershell.LayerShellLayerBottom, layerFor("bottom"))
	assert.Equal(t, layershell.LayerShellLayerBackground, layerFor("background"))
	assert.Equal(t, layershell.LayerShellLayerOverlay, layerFor(""))
}
