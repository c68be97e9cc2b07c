// Package visibility drives the panel window's fade in and fade out.
//
// A Machine moves a Window through Hidden, FadingIn, Visible and FadingOut.
// Fades are stepped by a Scheduler so the same machine runs on a GLib
// timeout in the panel and on a hand-cranked scheduler in tests. A Guard
// shared by every machine in the process allows one fade at a time.
package visibility
