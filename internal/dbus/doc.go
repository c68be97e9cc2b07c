// Package dbus exposes the theme controller and the panel on the session bus
// as io.github.jmylchreest.PowerPanel1. The daemon runs a Server; the CLI and
// the settings TUI use a Client. Broadcasts from the controller are re-emitted
// as signals carrying the JSON encoding of the message.
package dbus
