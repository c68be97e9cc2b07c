package panel

import (
	"sync/atomic"
	"time"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/powerpanel/internal/visibility"
)

// GLibScheduler runs fade ticks as GLib timeouts on the main loop.
type GLibScheduler struct{}

// Every implements visibility.Scheduler.
func (GLibScheduler) Every(period time.Duration, fn func() bool) visibility.Cancel {
	ms := uint(period / time.Millisecond)
	if ms == 0 {
		ms = 1
	}

	var alive atomic.Bool
	alive.Store(true)

	handle := coreglib.TimeoutAdd(ms, func() bool {
		if !alive.Load() {
			return false
		}
		if fn() {
			return true
		}
		alive.Store(false)
		return false
	})

	return func() {
		if alive.CompareAndSwap(true, false) {
			coreglib.SourceRemove(handle)
		}
	}
}

// post runs fn on the GTK main loop.
func post(fn func()) {
	coreglib.IdleAdd(fn)
}
