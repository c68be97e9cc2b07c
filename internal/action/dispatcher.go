package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/jmylchreest/powerpanel/internal/config"
)

// Sounder plays a confirmation before an action runs.
type Sounder interface {
	PlayForAction(ctx context.Context, action string) error
}

// Dispatcher performs power actions.
type Dispatcher struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	cfg      *config.Config
	executor Executor
	power    PowerManager
	sounder  Sounder
	goos     string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExecutor replaces the command executor.
func WithExecutor(e Executor) Option {
	return func(d *Dispatcher) { d.executor = e }
}

// WithPowerManager sets the service used before falling back to commands.
func WithPowerManager(p PowerManager) Option {
	return func(d *Dispatcher) { d.power = p }
}

// WithSounder sets the confirmation sound player.
func WithSounder(s Sounder) Option {
	return func(d *Dispatcher) { d.sounder = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithGOOS overrides the platform used to pick fallback commands.
func WithGOOS(goos string) Option {
	return func(d *Dispatcher) { d.goos = goos }
}

// NewDispatcher creates a dispatcher. A nil cfg uses the defaults.
func NewDispatcher(cfg *config.Config, opts ...Option) *Dispatcher {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := &Dispatcher{
		cfg:      cfg,
		executor: NewCommandExecutor(),
		goos:     runtime.GOOS,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// UpdateConfig swaps the configuration used by later actions.
func (d *Dispatcher) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
}

func (d *Dispatcher) config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Command returns the command line that would run for an action when no
// power manager handles it.
func (d *Dispatcher) Command(a Action) ([]string, bool) {
	if override, ok := d.config().CommandForAction(string(a)); ok {
		return strings.Fields(override), true
	}
	cmd, ok := defaultCommands(d.goos)[a]
	return cmd, ok
}

// Perform runs the action named id and returns any failure.
func (d *Dispatcher) Perform(ctx context.Context, id string) error {
	a, err := Parse(id)
	if err != nil {
		return err
	}

	d.logger.Info("performing action", "action", a)

	if d.sounder != nil {
		if err := d.sounder.PlayForAction(ctx, string(a)); err != nil {
			d.logger.Debug("confirmation sound failed", "action", a, "error", err)
		}
	}

	cfg := d.config()
	_, overridden := cfg.CommandForAction(string(a))
	if !overridden && d.power != nil && cfg.Actions.UseLogind {
		err := d.power.Perform(ctx, a)
		if err == nil {
			return nil
		}
		d.logger.Warn("power manager failed, falling back to command", "action", a, "error", err)
	}

	cmd, ok := d.Command(a)
	if !ok || len(cmd) == 0 {
		return fmt.Errorf("%w: %s on %s", ErrUnsupported, a, d.goos)
	}

	_, stderr, err := d.executor.Execute(ctx, cmd[0], cmd[1:]...)
	if err != nil {
		if stderr = strings.TrimSpace(stderr); stderr != "" {
			return fmt.Errorf("%s: %w: %s", strings.Join(cmd, " "), err, stderr)
		}
		return fmt.Errorf("%s: %w", strings.Join(cmd, " "), err)
	}
	return nil
}

// Dispatch runs the action named id. Unknown identifiers and failures are
// logged and otherwise ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, id string) {
	err := d.Perform(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownAction):
		d.logger.Warn("unknown action ignored", "action", id)
	default:
		d.logger.Error("action failed", "action", id, "error", err)
	}
}
