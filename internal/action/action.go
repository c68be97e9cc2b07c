package action

import (
	"errors"
	"fmt"
)

// Action identifies a power operation.
type Action string

const (
	// Shutdown powers the machine off.
	Shutdown Action = "shutdown"
	// Restart reboots the machine.
	Restart Action = "restart"
	// Sleep suspends the machine.
	Sleep Action = "sleep"
)

// All lists every action in panel order.
var All = []Action{Shutdown, Restart, Sleep}

var (
	// ErrUnknownAction is returned for identifiers other than shutdown, restart and sleep.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnsupported is returned when no way to perform an action exists on this platform.
	ErrUnsupported = errors.New("action not supported on this platform")
)

// Parse returns the action for an identifier. Matching is exact.
func Parse(id string) (Action, error) {
	for _, a := range All {
		if string(a) == id {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, id)
}

// String returns the identifier.
func (a Action) String() string {
	return string(a)
}

// Label returns the button caption for the action.
func (a Action) Label() string {
	switch a {
	case Shutdown:
		return "Power"
	case Restart:
		return "Restart"
	case Sleep:
		return "Sleep"
	default:
		return string(a)
	}
}

// defaultCommands returns the fallback command line for each action on goos.
func defaultCommands(goos string) map[Action][]string {
	switch goos {
	case "linux":
		return map[Action][]string{
			Shutdown: {"systemctl", "poweroff"},
			Restart:  {"systemctl", "reboot"},
			Sleep:    {"systemctl", "suspend"},
		}
	case "windows":
		return map[Action][]string{
			Shutdown: {"shutdown", "/s", "/t", "0"},
			Restart:  {"shutdown", "/r", "/t", "0"},
			Sleep:    {"rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"},
		}
	case "darwin":
		return map[Action][]string{
			Shutdown: {"osascript", "-e", `tell app "System Events" to shut down`},
			Restart:  {"osascript", "-e", `tell app "System Events" to restart`},
			Sleep:    {"pmset", "sleepnow"},
		}
	default:
		return nil
	}
}
