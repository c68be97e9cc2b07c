// Package appearance detects the desktop's dark/light preference.
package appearance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/powerpanel/internal/config"
)

// EnvColorScheme overrides every other source when set to "dark" or "light".
const EnvColorScheme = "POWERPANEL_COLOR_SCHEME"

// XDG desktop portal settings coordinates.
const (
	portalDest     = "org.freedesktop.portal.Desktop"
	portalPath     = "/org/freedesktop/portal/desktop"
	portalSettings = "org.freedesktop.portal.Settings"
	appearanceNS   = "org.freedesktop.appearance"
	colorSchemeKey = "color-scheme"
	portalTimeout  = 2 * time.Second
)

// Portal color-scheme values.
const (
	SchemeNoPreference uint32 = 0
	SchemePreferDark   uint32 = 1
	SchemePreferLight  uint32 = 2
)

// ErrNoPreference is returned when no source expresses a preference.
var ErrNoPreference = errors.New("no color scheme preference")

// SchemeReader reads the portal color-scheme value.
type SchemeReader interface {
	ReadColorScheme(ctx context.Context) (uint32, error)
}

// PortalReader reads the color scheme from the XDG desktop portal.
type PortalReader struct {
	conn *dbus.Conn
}

// NewPortalReader connects to the session bus.
func NewPortalReader() (*PortalReader, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &PortalReader{conn: conn}, nil
}

// ReadColorScheme implements SchemeReader.
// ReadOne is tried first; older portals only provide Read, which wraps the
// value in an extra variant.
func (p *PortalReader) ReadColorScheme(ctx context.Context) (uint32, error) {
	obj := p.conn.Object(portalDest, portalPath)

	var value dbus.Variant
	err := obj.CallWithContext(ctx, portalSettings+".ReadOne", 0, appearanceNS, colorSchemeKey).Store(&value)
	if err != nil {
		err = obj.CallWithContext(ctx, portalSettings+".Read", 0, appearanceNS, colorSchemeKey).Store(&value)
		if err != nil {
			return SchemeNoPreference, fmt.Errorf("failed to read portal setting: %w", err)
		}
	}
	return unwrapScheme(value)
}

// unwrapScheme peels nested variants down to the uint32 value.
func unwrapScheme(v dbus.Variant) (uint32, error) {
	for i := 0; i < 3; i++ {
		switch val := v.Value().(type) {
		case uint32:
			return val, nil
		case dbus.Variant:
			v = val
		default:
			return SchemeNoPreference, fmt.Errorf("unexpected color-scheme type %s", v.Signature())
		}
	}
	return SchemeNoPreference, fmt.Errorf("color-scheme nested too deeply")
}

// Detector combines the configured override, the environment and the portal.
type Detector struct {
	logger *slog.Logger
	reader SchemeReader
	getenv func(string) string
}

// NewDetector creates a detector. reader may be nil when no session bus is
// available; detection then relies on the environment only.
func NewDetector(reader SchemeReader, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		logger: logger,
		reader: reader,
		getenv: os.Getenv,
	}
}

// PrefersDark resolves the dark preference. Order: the config override,
// POWERPANEL_COLOR_SCHEME, the portal, then a GTK_THEME ending in ":dark".
// Without any preference the answer is light.
func (d *Detector) PrefersDark(scheme config.ColorScheme) bool {
	switch scheme {
	case config.ColorSchemeDark:
		return true
	case config.ColorSchemeLight:
		return false
	}

	dark, err := d.detect()
	if err != nil {
		d.logger.Debug("no color scheme preference, using light", "error", err)
		return false
	}
	return dark
}

// Func returns a closure suitable for config.NewSelectionStore.
func (d *Detector) Func(scheme config.ColorScheme) func() bool {
	return func() bool { return d.PrefersDark(scheme) }
}

func (d *Detector) detect() (bool, error) {
	if env := d.getenv(EnvColorScheme); env != "" {
		switch strings.ToLower(env) {
		case "dark":
			return true, nil
		case "light":
			return false, nil
		}
		d.logger.Warn("ignoring invalid color scheme override", "env", EnvColorScheme, "value", env)
	}

	if d.reader != nil {
		ctx, cancel := context.WithTimeout(context.Background(), portalTimeout)
		defer cancel()

		value, err := d.reader.ReadColorScheme(ctx)
		switch {
		case err != nil:
			d.logger.Debug("portal color scheme unavailable", "error", err)
		case value == SchemePreferDark:
			return true, nil
		case value == SchemePreferLight:
			return false, nil
		}
	}

	if gtkTheme := d.getenv("GTK_THEME"); gtkTheme != "" {
		return strings.HasSuffix(strings.ToLower(gtkTheme), ":dark"), nil
	}

	return false, ErrNoPreference
}
