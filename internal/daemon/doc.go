// Package daemon holds the background helpers powerpaneld wires together:
// config hot-reload and desktop notifications about its own failures.
package daemon
