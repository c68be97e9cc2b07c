// Package panel is the GTK presenter: a centered layer-shell window with the
// Power, Restart and Sleep buttons, styled by the active theme bundle and
// faded in and out by a visibility.Machine.
//
// Everything that touches widgets runs on the GTK main loop. Methods called
// from other goroutines marshal their work with glib.IdleAdd.
package panel
