package themesync

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmylchreest/powerpanel/internal/theme"
)

// Message kinds used on the wire.
const (
	KindHello           = "hello"
	KindRequestCatalog  = "request-catalog"
	KindSetSelection    = "set-selection"
	KindSetAccentColor  = "set-accent-color"
	KindCatalogSnapshot = "catalog-snapshot"
	KindThemeApplied    = "theme-applied"
	KindColorApplied    = "color-applied"
)

// ErrUnknownKind is returned by Decode for an unrecognised message kind.
var ErrUnknownKind = errors.New("unknown message kind")

// Message is any value exchanged between the controller and presenters.
type Message interface {
	Kind() string
	message()
}

// Request is a message a presenter sends to the controller.
type Request interface {
	Message
	request()
}

// Hello asks the controller for the catalog, the active theme and the
// accent color, in that order, addressed to the sender only.
type Hello struct{}

// RequestCatalog asks for a CatalogSnapshot addressed to the sender only.
type RequestCatalog struct{}

// SetSelection changes the active theme by name.
type SetSelection struct {
	Name string `json:"name"`
}

// SetAccentColor changes the accent color.
type SetAccentColor struct {
	Color string `json:"color"`
}

// CatalogSnapshot is the full theme list plus the active theme name.
type CatalogSnapshot struct {
	Themes          theme.Catalog `json:"themes"`
	ActiveThemeName string        `json:"active"`
}

// ThemeApplied announces the active theme. Descriptor is nil when the name
// could not be resolved; presenters then fall back to their cached catalog.
type ThemeApplied struct {
	Descriptor *theme.Descriptor `json:"descriptor,omitempty"`
	Name       string            `json:"name"`
}

// Resolved reports whether the notification carries a full descriptor.
func (t ThemeApplied) Resolved() bool {
	return t.Descriptor != nil
}

// ColorApplied announces the accent color.
type ColorApplied struct {
	Color string `json:"color"`
}

func (Hello) Kind() string           { return KindHello }
func (RequestCatalog) Kind() string  { return KindRequestCatalog }
func (SetSelection) Kind() string    { return KindSetSelection }
func (SetAccentColor) Kind() string  { return KindSetAccentColor }
func (CatalogSnapshot) Kind() string { return KindCatalogSnapshot }
func (ThemeApplied) Kind() string    { return KindThemeApplied }
func (ColorApplied) Kind() string    { return KindColorApplied }

func (Hello) message()           {}
func (RequestCatalog) message()  {}
func (SetSelection) message()    {}
func (SetAccentColor) message()  {}
func (CatalogSnapshot) message() {}
func (ThemeApplied) message()    {}
func (ColorApplied) message()    {}

func (Hello) request()          {}
func (RequestCatalog) request() {}
func (SetSelection) request()   {}
func (SetAccentColor) request() {}

// envelope is the JSON framing for transports.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode serialises a message with its kind tag.
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Kind(), err)
	}
	return json.Marshal(envelope{Kind: m.Kind(), Payload: payload})
}

// Decode parses a message produced by Encode.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	var m Message
	switch env.Kind {
	case KindHello:
		m = &Hello{}
	case KindRequestCatalog:
		m = &RequestCatalog{}
	case KindSetSelection:
		m = &SetSelection{}
	case KindSetAccentColor:
		m = &SetAccentColor{}
	case KindCatalogSnapshot:
		m = &CatalogSnapshot{}
	case KindThemeApplied:
		m = &ThemeApplied{}
	case KindColorApplied:
		m = &ColorApplied{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, m); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", env.Kind, err)
		}
	}

	return deref(m), nil
}

// deref returns the value form so callers can type-switch on plain structs.
func deref(m Message) Message {
	switch v := m.(type) {
	case *Hello:
		return *v
	case *RequestCatalog:
		return *v
	case *SetSelection:
		return *v
	case *SetAccentColor:
		return *v
	case *CatalogSnapshot:
		return *v
	case *ThemeApplied:
		return *v
	case *ColorApplied:
		return *v
	}
	return m
}
