package dbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/themesync"
)

// methodTimeout bounds how long a method call waits for the controller.
const methodTimeout = 2 * time.Second

// Panel is the window the Toggle method drives.
type Panel interface {
	// Toggle starts a fade and reports whether it was accepted.
	Toggle() bool
	// State returns the visibility state name.
	State() string
}

// ActionRunner performs power actions.
type ActionRunner interface {
	Dispatch(ctx context.Context, id string)
}

// emitter is the part of *dbus.Conn used to send signals.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Server implements the io.github.jmylchreest.PowerPanel1 D-Bus interface.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	ctrl    *themesync.Controller
	panel   Panel
	actions ActionRunner

	// Theme folder reported by Status
	themeFolder string

	mu      sync.RWMutex
	emitter emitter
	link    *themesync.Conn
	ctx     context.Context
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewServer creates a server in front of ctrl.
func NewServer(ctrl *themesync.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		ctrl:   ctrl,
		ctx:    context.Background(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// SetPanel sets the window driven by Toggle.
// Safe to call after Start.
func (s *Server) SetPanel(panel Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = panel
}

// SetActions sets the power action runner.
func (s *Server) SetActions(actions ActionRunner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = actions
}

// SetThemeFolder sets the custom theme folder reported by Status.
func (s *Server) SetThemeFolder(path string) {
	s.themeFolder = path
}

// Start connects to the session bus, exports the service and begins
// re-emitting controller broadcasts as signals.
func (s *Server) Start(ctx context.Context) error {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if running {
		return fmt.Errorf("server already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, ObjectPath, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: panelMethods(),
				Signals: panelSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", ServiceName)
	}

	s.serve(ctx, conn)

	s.logger.Info("D-Bus server started", "interface", Interface, "path", ObjectPath)
	return nil
}

// serve attaches to the controller and forwards its broadcasts to e.
func (s *Server) serve(ctx context.Context, e emitter) {
	link := s.ctrl.Connect("dbus")

	s.mu.Lock()
	s.emitter = e
	s.link = link
	s.ctx = ctx
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.forward(ctx, link.Events(), stopCh, doneCh)
}

// Stop detaches from the controller and releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	link := s.link
	doneCh := s.doneCh
	s.mu.Unlock()

	link.Close()
	<-doneCh

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(ServiceName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// SessionBus is shared, leave it open
	}

	s.logger.Info("D-Bus server stopped")
	return nil
}

// forward re-emits controller broadcasts until stopped.
func (s *Server) forward(ctx context.Context, events <-chan themesync.Message, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := s.emit(msg); err != nil {
				s.logger.Warn("failed to emit signal", "kind", msg.Kind(), "error", err)
			}
		}
	}
}

// callContext returns a context for a single method call.
func (s *Server) callContext() (context.Context, context.CancelFunc) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	return context.WithTimeout(ctx, methodTimeout)
}

// send queues a request on the server's controller connection.
func (s *Server) send(req themesync.Request) *dbus.Error {
	s.mu.RLock()
	link := s.link
	s.mu.RUnlock()
	if link == nil {
		return newError(ErrNameUnavailable, errors.New("server not started"))
	}

	ctx, cancel := s.callContext()
	defer cancel()
	if err := link.SendContext(ctx, req); err != nil {
		return newError(ErrNameFailed, err)
	}
	return nil
}

// RequestCatalog returns the encoded catalog snapshot.
// D-Bus method: RequestCatalog() -> s
func (s *Server) RequestCatalog() (string, *dbus.Error) {
	s.logger.Debug("RequestCatalog called")

	ctx, cancel := s.callContext()
	defer cancel()

	snap, err := s.ctrl.Snapshot(ctx)
	if err != nil {
		return "", newError(ErrNameFailed, err)
	}
	payload, err := themesync.Encode(snap)
	if err != nil {
		return "", newError(ErrNameFailed, err)
	}
	return string(payload), nil
}

// SetSelection changes the active theme. The result arrives as a
// ThemeApplied signal.
// D-Bus method: SetSelection(s) -> nothing
func (s *Server) SetSelection(name string) *dbus.Error {
	s.logger.Debug("SetSelection called", "theme", name)
	return s.send(themesync.SetSelection{Name: name})
}

// SetAccentColor changes the accent color. The result arrives as a
// ColorApplied signal.
// D-Bus method: SetAccentColor(s) -> nothing
func (s *Server) SetAccentColor(color string) *dbus.Error {
	s.logger.Debug("SetAccentColor called", "color", color)
	return s.send(themesync.SetAccentColor{Color: color})
}

// Toggle shows or hides the panel.
// D-Bus method: Toggle() -> b
func (s *Server) Toggle() (bool, *dbus.Error) {
	s.logger.Debug("Toggle called")
	s.mu.RLock()
	panel := s.panel
	s.mu.RUnlock()
	if panel == nil {
		return false, newError(ErrNameUnavailable, errors.New("panel not running"))
	}
	return panel.Toggle(), nil
}

// PerformAction runs a power action in the background. Unknown identifiers
// are rejected.
// D-Bus method: PerformAction(s) -> nothing
func (s *Server) PerformAction(id string) *dbus.Error {
	s.logger.Debug("PerformAction called", "action", id)

	if _, err := action.Parse(id); err != nil {
		s.logger.Warn("unknown action ignored", "action", id)
		return newError(ErrNameUnknownAction, err)
	}
	s.mu.RLock()
	ctx, actions := s.ctx, s.actions
	s.mu.RUnlock()
	if actions == nil {
		return newError(ErrNameUnavailable, errors.New("actions not available"))
	}
	go actions.Dispatch(ctx, id)
	return nil
}

// Status returns the encoded daemon status.
// D-Bus method: Status() -> s
func (s *Server) Status() (string, *dbus.Error) {
	s.logger.Debug("Status called")

	ctx, cancel := s.callContext()
	defer cancel()

	snap, err := s.ctrl.Snapshot(ctx)
	if err != nil {
		return "", newError(ErrNameFailed, err)
	}

	sel := s.ctrl.Selection()
	status := Status{
		Theme:       sel.ActiveThemeName,
		Color:       sel.AccentColor,
		Themes:      len(snap.Themes),
		Presenters:  s.ctrl.ConnectionCount(),
		Panel:       "none",
		ThemeFolder: s.themeFolder,
	}
	s.mu.RLock()
	panel := s.panel
	s.mu.RUnlock()
	if panel != nil {
		status.Panel = panel.State()
	}

	data, err := json.Marshal(status)
	if err != nil {
		return "", newError(ErrNameFailed, err)
	}
	return string(data), nil
}

// panelMethods returns the D-Bus method introspection data.
func panelMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "RequestCatalog",
			Args: []introspect.Arg{
				{Name: "snapshot", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "SetSelection",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "SetAccentColor",
			Args: []introspect.Arg{
				{Name: "color", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Toggle",
			Args: []introspect.Arg{
				{Name: "accepted", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "PerformAction",
			Args: []introspect.Arg{
				{Name: "action", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "status", Type: "s", Direction: "out"},
			},
		},
	}
}

// panelSignals returns the D-Bus signal introspection data.
func panelSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalThemeApplied,
			Args: []introspect.Arg{{Name: "payload", Type: "s"}},
		},
		{
			Name: SignalColorApplied,
			Args: []introspect.Arg{{Name: "payload", Type: "s"}},
		},
		{
			Name: SignalCatalogChanged,
			Args: []introspect.Arg{{Name: "payload", Type: "s"}},
		},
	}
}
