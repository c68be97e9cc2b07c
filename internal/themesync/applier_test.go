package themesync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/theme"
)

type recordingSurface struct {
	assets   []theme.Assets
	colors   []string
	catalogs []CatalogSnapshot
}

func (r *recordingSurface) ApplyAssets(a theme.Assets)     { r.assets = append(r.assets, a) }
func (r *recordingSurface) ApplyAccentColor(c string)      { r.colors = append(r.colors, c) }
func (r *recordingSurface) ApplyCatalog(s CatalogSnapshot) { r.catalogs = append(r.catalogs, s) }

type plainSurface struct {
	assets []theme.Assets
}

func (p *plainSurface) ApplyAssets(a theme.Assets) { p.assets = append(p.assets, a) }
func (p *plainSurface) ApplyAccentColor(string)    {}

func TestApplier_DescriptorComputesAssetPaths(t *testing.T) {
	surface := &recordingSurface{}
	applier := NewApplier(surface, nil)

	d := theme.Descriptor{Name: "Neon", Origin: theme.OriginCustom, Root: "/custom/Neon"}
	applier.Handle(ThemeApplied{Descriptor: &d, Name: "Neon"})

	require.Len(t, surface.assets, 1)
	got := surface.assets[0]
	assert.Equal(t, "/custom/Neon/main.css", got.MainStyleSheet)
	assert.Equal(t, "/custom/Neon/animation.css", got.AnimationStyleSheet)
	assert.Equal(t, "/custom/Neon/ico/power.png", got.Icons[theme.IconPower])
	assert.Equal(t, "/custom/Neon/ico/restart.png", got.Icons[theme.IconRestart])
	assert.Equal(t, "/custom/Neon/ico/sleep.png", got.Icons[theme.IconSleep])
	assert.Equal(t, "Neon", applier.Active())
}

func TestApplier_NameOnlyUsesCachedCatalog(t *testing.T) {
	surface := &recordingSurface{}
	applier := NewApplier(surface, nil)

	applier.Handle(CatalogSnapshot{Themes: testCatalog(), ActiveThemeName: "Dark"})
	require.Len(t, surface.catalogs, 1)
	assert.Equal(t, "Dark", applier.Active())

	applier.Handle(ThemeApplied{Name: "Light"})

	require.Len(t, surface.assets, 1)
	assert.Equal(t, "/builtin/Light/main.css", surface.assets[0].MainStyleSheet)
	assert.Equal(t, "Light", applier.Active())
}

func TestApplier_NameOnlyUnknownIsIgnored(t *testing.T) {
	surface := &recordingSurface{}
	applier := NewApplier(surface, nil)
	applier.Handle(CatalogSnapshot{Themes: testCatalog(), ActiveThemeName: "Dark"})

	applier.Handle(ThemeApplied{Name: "Ghost"})

	assert.Empty(t, surface.assets)
	assert.Equal(t, "Dark", applier.Active())
}

func TestApplier_ColorAndIgnoredMessages(t *testing.T) {
	surface := &plainSurface{}
	applier := NewApplier(surface, nil)

	// Surfaces without ApplyCatalog still cache the catalog.
	applier.Handle(CatalogSnapshot{Themes: testCatalog()})
	applier.Handle(ColorApplied{Color: "rgba(0,0,0,0.5)"})
	applier.Handle(SetSelection{Name: "Dark"})

	assert.Equal(t, "rgba(0,0,0,0.5)", applier.Color())
	assert.Len(t, applier.Catalog(), 3)
	assert.Empty(t, surface.assets)
}

func TestApplier_RunWithController(t *testing.T) {
	persister := &fakePersister{current: config.Selection{ActiveThemeName: "Dark", AccentColor: "black"}}
	ctrl, _ := startController(t, persister)

	surface := &recordingSurface{}
	applier := NewApplier(surface, nil)
	conn := ctrl.Connect("panel")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		applier.Run(ctx, conn.Events())
	}()

	require.NoError(t, conn.Hello())
	require.NoError(t, conn.Send(SetSelection{Name: "Neon"}))
	require.NoError(t, conn.Send(SetAccentColor{Color: "lime"}))

	assert.Eventually(t, func() bool { return applier.Color() == "lime" }, 2*time.Second, 10*time.Millisecond)
	conn.Close()
	<-done

	require.Len(t, surface.assets, 2)
	assert.Equal(t, "/builtin/Dark/main.css", surface.assets[0].MainStyleSheet)
	assert.Equal(t, "/custom/Neon/main.css", surface.assets[1].MainStyleSheet)
	assert.Equal(t, []string{"black", "lime"}, surface.colors)
	assert.Equal(t, "Neon", applier.Active())
}
