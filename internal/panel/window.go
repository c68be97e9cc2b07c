package panel

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// gtkWindow adapts a GTK window to visibility.Window.
type gtkWindow struct {
	w *gtk.Window
}

func (g gtkWindow) Show() {
	g.w.SetVisible(true)
	g.w.Present()
}

func (g gtkWindow) Hide()                      { g.w.SetVisible(false) }
func (g gtkWindow) SetOpacity(opacity float64) { g.w.SetOpacity(opacity) }
func (g gtkWindow) Opacity() float64           { return g.w.Opacity() }
