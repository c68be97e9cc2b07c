package dbus

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/theme"
	"github.com/jmylchreest/powerpanel/internal/themesync"
)

type emitted struct {
	name string
	msg  themesync.Message
}

type fakeEmitter struct {
	mu      sync.Mutex
	signals []emitted
	err     error
}

func (f *fakeEmitter) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	sig := &dbus.Signal{Path: path, Name: name, Body: values}
	msg, err := DecodeSignal(sig)
	if err != nil {
		return err
	}
	f.signals = append(f.signals, emitted{name: name, msg: msg})
	return nil
}

func (f *fakeEmitter) last() (emitted, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.signals) == 0 {
		return emitted{}, false
	}
	return f.signals[len(f.signals)-1], true
}

type fakePanel struct {
	toggles int
	state   string
}

func (p *fakePanel) Toggle() bool {
	p.toggles++
	return true
}

func (p *fakePanel) State() string { return p.state }

type fakeRunner struct {
	mu  sync.Mutex
	ids []string
}

func (r *fakeRunner) Dispatch(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *fakeRunner) dispatched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func startServer(t *testing.T) (*Server, *fakeEmitter) {
	t.Helper()

	dir := t.TempDir()
	builtin := filepath.Join(dir, "themes")
	_, err := theme.InstallBundled(builtin)
	require.NoError(t, err)

	store := theme.NewStore(builtin, filepath.Join(dir, "custom_theme"), nil)
	selections := config.NewSelectionStore(filepath.Join(dir, "config.json"), func() bool { return true }, nil)
	ctrl := themesync.NewController(store, selections, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()

	s := NewServer(ctrl, nil)
	e := &fakeEmitter{}
	s.serve(ctx, e)

	t.Cleanup(func() {
		_ = s.Stop()
		cancel()
		<-done
	})
	return s, e
}

func TestServer_SetSelectionEmitsThemeApplied(t *testing.T) {
	s, e := startServer(t)

	require.Nil(t, s.SetSelection("Light"))

	require.Eventually(t, func() bool {
		last, ok := e.last()
		return ok && last.name == Interface+"."+SignalThemeApplied
	}, time.Second, 10*time.Millisecond)

	last, _ := e.last()
	applied := last.msg.(themesync.ThemeApplied)
	require.True(t, applied.Resolved())
	assert.Equal(t, "Light", applied.Descriptor.Name)
	assert.Equal(t, theme.OriginBuiltin, applied.Descriptor.Origin)
	assert.Equal(t, "Light", s.ctrl.Selection().ActiveThemeName)
}

func TestServer_SetAccentColorEmitsColorApplied(t *testing.T) {
	s, e := startServer(t)

	require.Nil(t, s.SetAccentColor("#ff8800"))

	require.Eventually(t, func() bool {
		last, ok := e.last()
		return ok && last.name == Interface+"."+SignalColorApplied
	}, time.Second, 10*time.Millisecond)

	last, _ := e.last()
	assert.Equal(t, themesync.ColorApplied{Color: "#ff8800"}, last.msg)
}

func TestServer_RefreshEmitsCatalogChanged(t *testing.T) {
	s, e := startServer(t)

	s.ctrl.RefreshCatalog()

	require.Eventually(t, func() bool {
		last, ok := e.last()
		return ok && last.name == Interface+"."+SignalCatalogChanged
	}, time.Second, 10*time.Millisecond)
}

func TestServer_RequestCatalog(t *testing.T) {
	s, _ := startServer(t)

	payload, derr := s.RequestCatalog()
	require.Nil(t, derr)

	msg, err := themesync.Decode([]byte(payload))
	require.NoError(t, err)
	snap := msg.(themesync.CatalogSnapshot)
	assert.Equal(t, "Dark", snap.ActiveThemeName)
	assert.Equal(t, []string{"Dark", "Light"}, snap.Themes.Names())
}

func TestServer_Toggle(t *testing.T) {
	s, _ := startServer(t)

	_, derr := s.Toggle()
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameUnavailable, derr.Name)

	panel := &fakePanel{state: "hidden"}
	s.SetPanel(panel)
	accepted, derr := s.Toggle()
	require.Nil(t, derr)
	assert.True(t, accepted)
	assert.Equal(t, 1, panel.toggles)
}

func TestServer_PerformAction(t *testing.T) {
	s, _ := startServer(t)

	derr := s.PerformAction("sleep")
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameUnavailable, derr.Name)

	runner := &fakeRunner{}
	s.SetActions(runner)

	derr = s.PerformAction("hibernate")
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameUnknownAction, derr.Name)

	require.Nil(t, s.PerformAction("sleep"))
	require.Eventually(t, func() bool {
		return len(runner.dispatched()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"sleep"}, runner.dispatched())
}

func TestServer_Status(t *testing.T) {
	s, _ := startServer(t)
	s.SetPanel(&fakePanel{state: "visible"})
	s.SetThemeFolder("/home/user/.config/powerpanel/custom_theme")

	payload, derr := s.Status()
	require.Nil(t, derr)

	var status Status
	require.NoError(t, json.Unmarshal([]byte(payload), &status))
	assert.Equal(t, "Dark", status.Theme)
	assert.Equal(t, config.DefaultDarkColor, status.Color)
	assert.Equal(t, 2, status.Themes)
	assert.Equal(t, 1, status.Presenters)
	assert.Equal(t, "visible", status.Panel)
	assert.Equal(t, "/home/user/.config/powerpanel/custom_theme", status.ThemeFolder)
}

func TestServer_EmitWithoutConnection(t *testing.T) {
	s := NewServer(nil, nil)
	assert.Error(t, s.emit(themesync.ColorApplied{Color: "#000"}))
	assert.NoError(t, s.emit(themesync.Hello{}))
	assert.NoError(t, s.Stop())
}

func TestServer_SendBeforeStart(t *testing.T) {
	s := NewServer(nil, nil)
	derr := s.SetSelection("Dark")
	require.NotNil(t, derr)
	assert.Equal(t, ErrNameUnavailable, derr.Name)
}
