package themesync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/powerpanel/internal/theme"
)

// Surface is the part of a presenter that displays a theme.
// Missing asset files are the surface's problem and never an error here.
type Surface interface {
	ApplyAssets(assets theme.Assets)
	ApplyAccentColor(color string)
}

// CatalogSurface is implemented by surfaces that list themes.
type CatalogSurface interface {
	ApplyCatalog(snapshot CatalogSnapshot)
}

// Applier turns controller notifications into Surface calls.
type Applier struct {
	logger  *slog.Logger
	surface Surface

	mu      sync.RWMutex
	catalog theme.Catalog
	active  string
	color   string
}

// NewApplier creates an applier for surface.
func NewApplier(surface Surface, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		logger:  logger,
		surface: surface,
	}
}

// Run applies events until the channel closes or ctx is cancelled.
func (a *Applier) Run(ctx context.Context, events <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			a.Handle(msg)
		}
	}
}

// Handle applies one notification. Requests are ignored.
func (a *Applier) Handle(msg Message) {
	switch m := msg.(type) {
	case CatalogSnapshot:
		a.mu.Lock()
		a.catalog = m.Themes
		a.active = m.ActiveThemeName
		a.mu.Unlock()

		if cs, ok := a.surface.(CatalogSurface); ok {
			cs.ApplyCatalog(m)
		}

	case ThemeApplied:
		a.applyTheme(m)

	case ColorApplied:
		a.mu.Lock()
		a.color = m.Color
		a.mu.Unlock()
		a.surface.ApplyAccentColor(m.Color)

	default:
		a.logger.Debug("applier ignoring message", "kind", msg.Kind())
	}
}

func (a *Applier) applyTheme(m ThemeApplied) {
	var d theme.Descriptor
	if m.Descriptor != nil {
		d = *m.Descriptor
	} else {
		// Name-only: fall back to the last catalog we saw.
		a.mu.RLock()
		cached, ok := a.catalog.Lookup(m.Name)
		a.mu.RUnlock()
		if !ok {
			a.logger.Warn("unknown theme, not applying", "theme", m.Name)
			return
		}
		d = cached
	}

	a.mu.Lock()
	a.active = d.Name
	a.mu.Unlock()

	a.logger.Debug("applying theme", "theme", d.Name, "origin", d.Origin, "path", d.Root)
	a.surface.ApplyAssets(d.Assets())
}

// Catalog returns the last catalog received.
func (a *Applier) Catalog() theme.Catalog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.catalog
}

// Active returns the name of the theme last applied or announced.
func (a *Applier) Active() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

// Color returns the accent color last applied.
func (a *Applier) Color() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.color
}
