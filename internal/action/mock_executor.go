package action

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockExecutor simulates command execution for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands maps command lines to responses.
	// Key format: "command arg1 arg2"
	Commands map[string]*CommandResult

	// DefaultResult is returned when no specific command matches.
	DefaultResult *CommandResult

	// ExecutedCommands tracks all commands that were executed.
	ExecutedCommands []ExecutedCommand
}

// CommandResult represents the result of a command execution.
type CommandResult struct {
	Stdout string
	Stderr string
	Error  error
}

// ExecutedCommand tracks a command that was executed.
type ExecutedCommand struct {
	Name string
	Args []string
}

// Line returns the command as a single space separated string.
func (c ExecutedCommand) Line() string {
	return buildCommandKey(c.Name, c.Args)
}

// NewMockExecutor creates a new mock executor that succeeds by default.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:         make(map[string]*CommandResult),
		DefaultResult:    &CommandResult{},
		ExecutedCommands: make([]ExecutedCommand, 0),
	}
}

// Execute records the command and returns the configured result.
func (m *MockExecutor) Execute(_ context.Context, name string, args ...string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExecutedCommands = append(m.ExecutedCommands, ExecutedCommand{
		Name: name,
		Args: args,
	})

	cmdKey := buildCommandKey(name, args)
	if result, ok := m.Commands[cmdKey]; ok {
		return result.Stdout, result.Stderr, result.Error
	}

	if m.DefaultResult != nil {
		return m.DefaultResult.Stdout, m.DefaultResult.Stderr, m.DefaultResult.Error
	}

	return "", "", fmt.Errorf("mock executor: no result configured for command: %s", cmdKey)
}

// AddCommand registers a command response.
func (m *MockExecutor) AddCommand(name string, args []string, stdout, stderr string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands[buildCommandKey(name, args)] = &CommandResult{
		Stdout: stdout,
		Stderr: stderr,
		Error:  err,
	}
}

// Executed returns a copy of the recorded commands.
func (m *MockExecutor) Executed() []ExecutedCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ExecutedCommand, len(m.ExecutedCommands))
	copy(out, m.ExecutedCommands)
	return out
}

// Reset clears all command history and configurations.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make(map[string]*CommandResult)
	m.ExecutedCommands = make([]ExecutedCommand, 0)
	m.DefaultResult = &CommandResult{}
}

// buildCommandKey creates a string key from command name and args.
func buildCommandKey(name string, args []string) string {
	parts := append([]string{name}, args...)
	return strings.Join(parts, " ")
}
