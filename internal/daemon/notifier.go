package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/powerpanel/internal/config"
)

// NotificationLevel indicates the urgency/severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// Notification is a desktop notification about a powerpaneld event.
type Notification struct {
	Summary string
	Body    string
	Icon    string
	Urgency byte
}

// NotifyFunc delivers a notification.
type NotifyFunc func(ctx context.Context, n Notification) error

// InternalNotifier sends desktop notifications about powerpaneld failures
// and reloads. Repeats of the same key are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	notify NotifyFunc

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetNotifyFunc sets the delivery function, usually DesktopNotify.
func (n *InternalNotifier) SetNotifyFunc(fn NotifyFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notify = fn
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends an internal notification if not rate-limited.
// The key is used for rate limiting - same key won't notify again within minInterval.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()

	if !n.enabled {
		n.mu.Unlock()
		return
	}

	if n.notify == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "summary", summary)
		return
	}

	now := n.now()
	if lastTime, ok := n.lastNotifyTime[key]; ok && now.Sub(lastTime) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now
	notify := n.notify
	n.mu.Unlock()

	notification := Notification{Summary: summary, Body: body}
	switch level {
	case NotificationLevelInfo:
		notification.Urgency = 0
		notification.Icon = "dialog-information"
	case NotificationLevelWarning:
		notification.Urgency = 1
		notification.Icon = "dialog-warning"
	case NotificationLevelError:
		notification.Urgency = 2
		notification.Icon = "dialog-error"
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := notify(ctx, notification); err != nil {
		n.logger.Debug("internal notification failed", "key", key, "error", err)
	}
}

// NotifyConfigReloaded sends a notification about config being reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		config.AppName+" configuration has been successfully reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError sends a notification about config validation error.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyThemeMissing sends a notification when the selected theme can't be found.
func (n *InternalNotifier) NotifyThemeMissing(name string) {
	n.Notify(
		"theme-missing",
		"Theme Not Found",
		"Theme '"+name+"' is not installed. Check the theme folders.",
		NotificationLevelWarning,
	)
}

// NotifyActionFailed sends a notification when a power action fails.
func (n *InternalNotifier) NotifyActionFailed(action string, err error) {
	n.Notify(
		"action-"+action,
		"Power Action Failed",
		fmt.Sprintf("Could not %s: %v", action, err),
		NotificationLevelError,
	)
}

// DesktopNotify returns a NotifyFunc that calls org.freedesktop.Notifications
// on conn.
func DesktopNotify(conn *godbus.Conn) NotifyFunc {
	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	return func(ctx context.Context, n Notification) error {
		hints := map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(n.Urgency),
			"category":      godbus.MakeVariant("device"),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant(config.AppName),
		}
		call := obj.CallWithContext(ctx, "org.freedesktop.Notifications.Notify", 0,
			config.AppName, uint32(0), n.Icon, n.Summary, n.Body, []string{}, hints, int32(5000))
		return call.Err
	}
}
