package action

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	logindDest      = "org.freedesktop.login1"
	logindPath      = "/org/freedesktop/login1"
	logindInterface = "org.freedesktop.login1.Manager"
)

// PowerManager performs actions through a system service.
type PowerManager interface {
	Perform(ctx context.Context, a Action) error
}

// caller is the part of dbus.BusObject the logind client uses.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Logind talks to systemd-logind on the system bus.
type Logind struct {
	obj    caller
	logger *slog.Logger
}

// NewLogind connects to the system bus.
func NewLogind(logger *slog.Logger) (*Logind, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return newLogind(conn.Object(logindDest, dbus.ObjectPath(logindPath)), logger), nil
}

func newLogind(obj caller, logger *slog.Logger) *Logind {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logind{obj: obj, logger: logger}
}

// logindMethod returns the manager method name for an action.
func logindMethod(a Action) (string, bool) {
	switch a {
	case Shutdown:
		return "PowerOff", true
	case Restart:
		return "Reboot", true
	case Sleep:
		return "Suspend", true
	default:
		return "", false
	}
}

// Perform calls PowerOff, Reboot or Suspend without interactive authorization.
func (l *Logind) Perform(ctx context.Context, a Action) error {
	method, ok := logindMethod(a)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}

	l.logger.Debug("calling logind", "method", method)
	call := l.obj.CallWithContext(ctx, logindInterface+"."+method, 0, false)
	if call.Err != nil {
		return fmt.Errorf("logind %s: %w", method, call.Err)
	}
	return nil
}

// Can reports logind's answer to CanPowerOff, CanReboot or CanSuspend:
// "yes", "no", "challenge" or "na".
func (l *Logind) Can(ctx context.Context, a Action) (string, error) {
	method, ok := logindMethod(a)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}

	var answer string
	if err := l.obj.CallWithContext(ctx, logindInterface+".Can"+method, 0).Store(&answer); err != nil {
		return "", fmt.Errorf("logind Can%s: %w", method, err)
	}
	return answer, nil
}
