package dbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/themesync"
)

// Client calls a running daemon and listens for its signals.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewClient opens a private session bus connection.
func NewClient(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn:   conn,
		obj:    conn.Object(ServiceName, ObjectPath),
		logger: logger,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Running reports whether a daemon owns the service name.
func (c *Client) Running(ctx context.Context) bool {
	var has bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, ServiceName).Store(&has)
	if err != nil {
		c.logger.Debug("NameHasOwner failed", "error", err)
		return false
	}
	return has
}

// call invokes a method on the daemon and maps error names back to errors.
func (c *Client) call(ctx context.Context, method string, args ...interface{}) *dbus.Call {
	call := c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
	if call.Err != nil {
		call.Err = mapError(method, call.Err)
	}
	return call
}

// mapError wraps a call error with the sentinel matching its D-Bus name.
func mapError(method string, err error) error {
	switch errorName(err) {
	case ErrNameUnknownAction:
		return fmt.Errorf("%s: %w", method, action.ErrUnknownAction)
	case ErrNameUnavailable:
		return fmt.Errorf("%s: %w: %v", method, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", method, err)
	}
}

// RequestCatalog fetches the theme list and active theme.
func (c *Client) RequestCatalog(ctx context.Context) (themesync.CatalogSnapshot, error) {
	var payload string
	if err := c.call(ctx, "RequestCatalog").Store(&payload); err != nil {
		return themesync.CatalogSnapshot{}, err
	}

	msg, err := themesync.Decode([]byte(payload))
	if err != nil {
		return themesync.CatalogSnapshot{}, err
	}
	snap, ok := msg.(themesync.CatalogSnapshot)
	if !ok {
		return themesync.CatalogSnapshot{}, fmt.Errorf("RequestCatalog returned %s", msg.Kind())
	}
	return snap, nil
}

// SetSelection asks the daemon to switch themes.
func (c *Client) SetSelection(ctx context.Context, name string) error {
	return c.call(ctx, "SetSelection", name).Err
}

// SetAccentColor asks the daemon to change the accent color.
func (c *Client) SetAccentColor(ctx context.Context, color string) error {
	return c.call(ctx, "SetAccentColor", color).Err
}

// Toggle shows or hides the panel. It returns false when a fade is running.
func (c *Client) Toggle(ctx context.Context) (bool, error) {
	var accepted bool
	err := c.call(ctx, "Toggle").Store(&accepted)
	return accepted, err
}

// PerformAction asks the daemon to run a power action.
func (c *Client) PerformAction(ctx context.Context, id string) error {
	return c.call(ctx, "PerformAction", id).Err
}

// Status returns the daemon's state.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var payload string
	if err := c.call(ctx, "Status").Store(&payload); err != nil {
		return Status{}, err
	}

	var status Status
	if err := json.Unmarshal([]byte(payload), &status); err != nil {
		return Status{}, fmt.Errorf("failed to parse status: %w", err)
	}
	return status, nil
}

// Subscribe delivers daemon broadcasts until ctx is done, then closes the
// returned channel. Undecodable signals are logged and skipped.
func (c *Client) Subscribe(ctx context.Context) (<-chan themesync.Message, error) {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchInterface(Interface),
	); err != nil {
		return nil, fmt.Errorf("failed to add match rule: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	c.conn.Signal(signals)

	out := make(chan themesync.Message, 16)
	go func() {
		defer close(out)
		defer c.conn.RemoveSignal(signals)

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				msg, err := DecodeSignal(sig)
				if err != nil {
					c.logger.Debug("ignoring signal", "name", sig.Name, "error", err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
