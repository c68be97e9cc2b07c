package visibility

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"
)

// Default fade parameters: 0.05 per 16ms tick, 20 ticks per fade.
const (
	DefaultStep = 0.05
	DefaultTick = 16 * time.Millisecond
)

// epsilon absorbs float error when counting steps, so 1/0.05 is 20 and not 21.
const epsilon = 1e-9

// State is the window visibility state.
type State int

const (
	Hidden State = iota
	FadingIn
	Visible
	FadingOut
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case FadingIn:
		return "fading-in"
	case Visible:
		return "visible"
	case FadingOut:
		return "fading-out"
	default:
		return "unknown"
	}
}

// Animating reports whether the state is a fade.
func (s State) Animating() bool {
	return s == FadingIn || s == FadingOut
}

// Window is the surface being faded.
type Window interface {
	Show()
	Hide()
	SetOpacity(opacity float64)
	Opacity() float64
}

// Option configures a Machine.
type Option func(*Machine)

// WithStep sets the opacity change per tick. Values outside (0, 1] are ignored.
func WithStep(step float64) Option {
	return func(m *Machine) {
		if step > 0 && step <= 1 {
			m.step = step
		}
	}
}

// WithTick sets the tick period. Non-positive values are ignored.
func WithTick(tick time.Duration) Option {
	return func(m *Machine) {
		if tick > 0 {
			m.tick = tick
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Machine is the visibility state machine for one window.
type Machine struct {
	mu     sync.Mutex
	logger *slog.Logger

	window Window
	sched  Scheduler
	guard  *Guard

	step float64
	tick time.Duration

	state State
	start float64 // opacity when the current fade began
	ticks int     // ticks taken in the current fade
	total int     // ticks the current fade needs
	stop  Cancel

	observers []func(State)
}

// NewMachine creates a machine in the Hidden state. guard may be shared
// between machines; nil gives the machine a guard of its own.
func NewMachine(window Window, sched Scheduler, guard *Guard, opts ...Option) *Machine {
	if guard == nil {
		guard = NewGuard()
	}
	m := &Machine{
		logger: slog.Default(),
		window: window,
		sched:  sched,
		guard:  guard,
		step:   DefaultStep,
		tick:   DefaultTick,
		state:  Hidden,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FadeTicks returns the number of ticks a full fade takes.
func (m *Machine) FadeTicks() int {
	return stepsFor(1, m.step)
}

// OnChange registers an observer called after every state change.
// Observers run on the goroutine that caused the change.
func (m *Machine) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Toggle fades the window in when hidden and out when visible. It returns
// false when nothing was started: a fade is running here or elsewhere.
func (m *Machine) Toggle() bool {
	switch m.State() {
	case Hidden:
		return m.Show()
	case Visible:
		return m.Hide()
	default:
		m.logger.Debug("toggle ignored, fade in progress")
		return false
	}
}

// Show starts a fade in from Hidden.
func (m *Machine) Show() bool {
	return m.begin(Hidden, FadingIn)
}

// Hide starts a fade out from Visible.
func (m *Machine) Hide() bool {
	return m.begin(Visible, FadingOut)
}

// Stop cancels a running fade without completing it and releases the guard.
// Used on shutdown only; the window is left as is.
func (m *Machine) Stop() {
	m.mu.Lock()
	stop := m.stop
	wasAnimating := m.state.Animating()
	m.stop = nil
	if wasAnimating {
		m.state = Hidden
		if m.window.Opacity() >= 1 {
			m.state = Visible
		}
	}
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
	if wasAnimating {
		m.guard.Release()
	}
}

func (m *Machine) begin(from, to State) bool {
	m.mu.Lock()
	if m.state != from {
		m.mu.Unlock()
		return false
	}
	if !m.guard.TryAcquire() {
		m.mu.Unlock()
		m.logger.Debug("toggle ignored, another fade is running")
		return false
	}

	m.state = to
	m.ticks = 0
	if to == FadingIn {
		m.start = 0
		m.total = stepsFor(1, m.step)
		m.window.SetOpacity(0)
		m.window.Show()
	} else {
		// Fade out from wherever the window is now.
		m.start = m.window.Opacity()
		m.total = stepsFor(m.start, m.step)
	}
	observers := m.snapshotObservers()
	m.mu.Unlock()

	m.logger.Debug("fade started", "state", to, "ticks", m.total, "from_opacity", m.start)
	notify(observers, to)

	stop := m.sched.Every(m.tick, m.advance)

	m.mu.Lock()
	if m.state == to {
		m.stop = stop
	}
	m.mu.Unlock()
	return true
}

// advance runs one fade tick. Returns false when the fade is complete.
func (m *Machine) advance() bool {
	m.mu.Lock()
	if !m.state.Animating() {
		m.mu.Unlock()
		return false
	}

	m.ticks++
	if m.ticks < m.total {
		offset := float64(m.ticks) * m.step
		if m.state == FadingIn {
			m.window.SetOpacity(offset)
		} else {
			m.window.SetOpacity(math.Max(0, m.start-offset))
		}
		m.mu.Unlock()
		return true
	}

	// Terminal tick: snap exactly.
	var final State
	if m.state == FadingIn {
		m.window.SetOpacity(1)
		final = Visible
	} else {
		m.window.SetOpacity(0)
		m.window.Hide()
		final = Hidden
	}
	m.state = final
	m.stop = nil
	observers := m.snapshotObservers()
	m.mu.Unlock()

	m.guard.Release()
	m.logger.Debug("fade finished", "state", final)
	notify(observers, final)
	return false
}

func (m *Machine) snapshotObservers() []func(State) {
	return slices.Clone(m.observers)
}

func notify(observers []func(State), s State) {
	for _, fn := range observers {
		fn(s)
	}
}

// stepsFor returns how many ticks of size step cover distance, at least one.
func stepsFor(distance, step float64) int {
	n := int(math.Ceil(distance/step - epsilon))
	if n < 1 {
		return 1
	}
	return n
}
