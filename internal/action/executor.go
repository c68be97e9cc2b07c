package action

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// Executor runs external commands. It allows command execution to be mocked in tests.
type Executor interface {
	// Execute runs a command with the given name and arguments.
	// Returns stdout, stderr, and any error.
	Execute(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// CommandExecutor executes real system commands.
type CommandExecutor struct{}

// NewCommandExecutor creates an executor that runs real commands.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{}
}

// Execute runs the command using os/exec.
// It refuses to run power commands from a test binary.
func (e *CommandExecutor) Execute(ctx context.Context, name string, args ...string) (string, string, error) {
	if testing.Testing() && isPowerCommand(name, args) {
		panic(fmt.Sprintf(
			"SAFETY VIOLATION: attempted to run power command during test: %s %s\n"+
				"Use action.MockExecutor instead.",
			name, strings.Join(args, " "),
		))
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer

	var stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String(), stderr.String(), err
}

// isPowerCommand checks if a command could power off, reboot or suspend the host.
func isPowerCommand(name string, args []string) bool {
	base := strings.ToLower(filepath.Base(name))

	switch base {
	case "shutdown", "poweroff", "reboot", "halt", "rundll32", "rundll32.exe", "osascript":
		return true
	case "systemctl", "loginctl":
		return slices.ContainsFunc(args, func(arg string) bool {
			switch arg {
			case "poweroff", "reboot", "suspend", "hibernate", "halt", "hybrid-sleep", "suspend-then-hibernate":
				return true
			}
			return false
		})
	case "pmset":
		return slices.Contains(args, "sleepnow")
	default:
		return false
	}
}
