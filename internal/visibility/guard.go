package visibility

import "sync/atomic"

// Guard admits one fade at a time across every machine that shares it.
type Guard struct {
	busy atomic.Bool
}

// NewGuard returns an idle guard.
func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire claims the guard. It returns false if a fade already holds it.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a fade holds the guard.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
