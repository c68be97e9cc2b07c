package theme

import (
	"fmt"
	"os"
	"path/filepath"
)

// Asset file names every theme bundle is expected to carry.
const (
	MainStyleSheetFile      = "main.css"
	AnimationStyleSheetFile = "animation.css"
	IconDir                 = "ico"
)

// Icon names used by the panel buttons.
const (
	IconPower   = "power"
	IconRestart = "restart"
	IconSleep   = "sleep"
)

// IconNames lists the icons a complete bundle provides, in panel order.
var IconNames = []string{IconPower, IconRestart, IconSleep}

// Origin tells where a theme bundle was discovered.
type Origin int

const (
	// OriginBuiltin is a bundle shipped with the application.
	OriginBuiltin Origin = iota
	// OriginCustom is a bundle found in the per-user custom directory.
	OriginCustom
)

// String returns the string representation of Origin.
func (o Origin) String() string {
	switch o {
	case OriginBuiltin:
		return "builtin"
	case OriginCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Origin) UnmarshalText(text []byte) error {
	switch string(text) {
	case "builtin":
		*o = OriginBuiltin
	case "custom":
		*o = OriginCustom
	default:
		return fmt.Errorf("invalid theme origin %q", text)
	}
	return nil
}

// Descriptor is the resolved metadata for one theme bundle.
// Descriptors are rebuilt on every scan and never mutated.
type Descriptor struct {
	Name   string `json:"name" yaml:"name"`
	Origin Origin `json:"origin" yaml:"origin"`
	Root   string `json:"path" yaml:"path"` // Absolute path to the bundle directory
}

// MainStyleSheet returns the path of the bundle's main stylesheet.
func (d Descriptor) MainStyleSheet() string {
	return filepath.Join(d.Root, MainStyleSheetFile)
}

// AnimationStyleSheet returns the path of the bundle's animation stylesheet.
func (d Descriptor) AnimationStyleSheet() string {
	return filepath.Join(d.Root, AnimationStyleSheetFile)
}

// Icon returns the path of the named icon inside the bundle.
func (d Descriptor) Icon(name string) string {
	return filepath.Join(d.Root, IconDir, name+".png")
}

// IsCustom reports whether the bundle came from the custom directory.
func (d Descriptor) IsCustom() bool {
	return d.Origin == OriginCustom
}

// Assets is the set of file paths a presenter swaps in when a theme is applied.
type Assets struct {
	Theme               string
	MainStyleSheet      string
	AnimationStyleSheet string
	Icons               map[string]string // icon name -> path
}

// Assets computes every asset path of the bundle. Files are not checked.
func (d Descriptor) Assets() Assets {
	icons := make(map[string]string, len(IconNames))
	for _, name := range IconNames {
		icons[name] = d.Icon(name)
	}
	return Assets{
		Theme:               d.Name,
		MainStyleSheet:      d.MainStyleSheet(),
		AnimationStyleSheet: d.AnimationStyleSheet(),
		Icons:               icons,
	}
}

// Check returns the expected asset files that are missing from the bundle.
// An empty result means the bundle is complete.
func (d Descriptor) Check() []string {
	expected := []string{d.MainStyleSheet(), d.AnimationStyleSheet()}
	for _, name := range IconNames {
		expected = append(expected, d.Icon(name))
	}

	var missing []string
	for _, path := range expected {
		if _, err := os.Stat(path); err != nil {
			rel, relErr := filepath.Rel(d.Root, path)
			if relErr != nil {
				rel = path
			}
			missing = append(missing, rel)
		}
	}
	return missing
}

// Catalog is an ordered list of descriptors: built-ins first, then customs.
type Catalog []Descriptor

// Lookup returns the first descriptor with the given name in catalog order.
// When a built-in and a custom theme share a name the built-in wins.
func (c Catalog) Lookup(name string) (Descriptor, bool) {
	for _, d := range c {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns the theme names in catalog order, duplicates included.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, d := range c {
		names[i] = d.Name
	}
	return names
}

// Count returns the number of entries with the given origin.
func (c Catalog) Count(origin Origin) int {
	n := 0
	for _, d := range c {
		if d.Origin == origin {
			n++
		}
	}
	return n
}
