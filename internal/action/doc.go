// Package action maps the panel's power buttons to the operating system.
//
// On Linux the dispatcher prefers systemd-logind over the system bus and
// falls back to running commands. Commands configured by the user always
// take precedence. Failures are logged and never reach the presenters.
package action
