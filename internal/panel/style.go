package panel

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/theme"
)

// accentCSS returns the rule that applies the accent color to the panel
// background. Characters that would end the declaration are dropped.
func accentCSS(color string) string {
	color = strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '\n', '\r':
			return -1
		}
		return r
	}, strings.TrimSpace(color))
	if color == "" {
		return ""
	}
	return fmt.Sprintf(".panel {\n  background-color: %s;\n}\n", color)
}

// readStyleSheet loads a theme stylesheet with its imports inlined.
// A missing file yields empty CSS.
func readStyleSheet(path string, logger *slog.Logger) string {
	if path == "" {
		return ""
	}
	css, err := theme.LoadStyleSheet(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("stylesheet missing, using empty CSS", "path", path)
		} else {
			logger.Warn("failed to read stylesheet", "path", path, "error", err)
		}
		return ""
	}
	return css
}

// buttonClass returns the CSS class themes use to style an action's button.
func buttonClass(a action.Action) string {
	return a.Label()
}

// iconFor returns the theme icon name shown on an action's button.
func iconFor(a action.Action) string {
	switch a {
	case action.Shutdown:
		return theme.IconPower
	case action.Restart:
		return theme.IconRestart
	case action.Sleep:
		return theme.IconSleep
	default:
		return ""
	}
}

// layerFor maps a configured layer name to the layer-shell layer.
func layerFor(name string) layershell.LayerShellLayer {
	switch name {
	case "background":
		return layershell.LayerShellLayerBackground
	case "bottom":
		return layershell.LayerShellLayerBottom
	case "top":
		return layershell.LayerShellLayerTop
	default:
		return layershell.LayerShellLayerOverlay
	}
}
