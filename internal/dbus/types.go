package dbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/powerpanel/internal/themesync"
)

const (
	// ServiceName is the bus name claimed by the daemon.
	ServiceName = "io.github.jmylchreest.PowerPanel"
	// ObjectPath is the path the daemon exports.
	ObjectPath = "/io/github/jmylchreest/PowerPanel"
	// Interface is the exported interface name.
	Interface = "io.github.jmylchreest.PowerPanel1"
)

// Signal names.
const (
	SignalThemeApplied   = "ThemeApplied"
	SignalColorApplied   = "ColorApplied"
	SignalCatalogChanged = "CatalogChanged"
)

// Error names returned by the server.
const (
	ErrNameUnknownAction = Interface + ".Error.UnknownAction"
	ErrNameUnavailable   = Interface + ".Error.Unavailable"
	ErrNameFailed        = Interface + ".Error.Failed"
)

// ErrUnavailable is returned by the client when the daemon reports that a
// component is not running.
var ErrUnavailable = errors.New("not available")

// Status is the daemon state returned by the Status method.
type Status struct {
	Theme       string `json:"theme" yaml:"theme"`
	Color       string `json:"color" yaml:"color"`
	Themes      int    `json:"themes" yaml:"themes"`
	Presenters  int    `json:"presenters" yaml:"presenters"`
	Panel       string `json:"panel" yaml:"panel"`
	ThemeFolder string `json:"theme_folder" yaml:"theme_folder"`
}

// SignalFor returns the signal used to re-emit a controller broadcast.
func SignalFor(msg themesync.Message) (string, bool) {
	switch msg.(type) {
	case themesync.ThemeApplied:
		return SignalThemeApplied, true
	case themesync.ColorApplied:
		return SignalColorApplied, true
	case themesync.CatalogSnapshot:
		return SignalCatalogChanged, true
	default:
		return "", false
	}
}

// DecodeSignal converts a received signal back into a controller message.
func DecodeSignal(sig *dbus.Signal) (themesync.Message, error) {
	if sig == nil {
		return nil, fmt.Errorf("nil signal")
	}

	member, ok := strings.CutPrefix(sig.Name, Interface+".")
	if !ok {
		return nil, fmt.Errorf("signal %s is not from %s", sig.Name, Interface)
	}
	if len(sig.Body) != 1 {
		return nil, fmt.Errorf("signal %s: expected 1 argument, got %d", member, len(sig.Body))
	}
	payload, ok := sig.Body[0].(string)
	if !ok {
		return nil, fmt.Errorf("signal %s: payload is %T, not string", member, sig.Body[0])
	}

	msg, err := themesync.Decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("signal %s: %w", member, err)
	}
	if name, _ := SignalFor(msg); name != member {
		return nil, fmt.Errorf("signal %s carries a %s message", member, msg.Kind())
	}
	return msg, nil
}

// errorName extracts the D-Bus error name from a call error.
func errorName(err error) string {
	var v dbus.Error
	if errors.As(err, &v) {
		return v.Name
	}
	var p *dbus.Error
	if errors.As(err, &p) && p != nil {
		return p.Name
	}
	return ""
}

// newError builds a named D-Bus error with a message body.
func newError(name string, err error) *dbus.Error {
	return dbus.NewError(name, []interface{}{err.Error()})
}
