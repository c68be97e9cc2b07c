// Package themesync keeps presenters in agreement about the active theme.
//
// A Controller owns the persisted selection and the theme store. Presenters
// (the GTK panel, the settings TUI, D-Bus clients) attach with Connect and
// exchange typed messages over their Conn. Requests are handled one at a
// time on the controller loop: a SetSelection is persisted, resolved and
// broadcast before the next request is looked at.
//
// On the presenter side an Applier turns ThemeApplied and ColorApplied
// notifications into calls on a Surface.
package themesync
