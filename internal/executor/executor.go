package executor

import (
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command with the given name and arguments
	Execute(name string, args ...string) ([]byte, error)

	// LookPath searches for an executable in the directories named by the PATH
	LookPath(file string) (string, error)
}

// SystemExecutor implements CommandExecutor using os/exec.
// Commands are started directly, never through a shell.
type SystemExecutor struct{}

// NewSystemExecutor creates a new SystemExecutor
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Execute runs a command and returns combined output
func (e *SystemExecutor) Execute(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.CombinedOutput()
}

// LookPath searches for an executable
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Result is the outcome of a single command run to completion.
type Result struct {
	Command string
	Output  []byte
	Err     error
}

// OK reports whether the command exited successfully.
func (r Result) OK() bool {
	return r.Err == nil
}

// Error returns nil for a successful command, otherwise a *CommandError
// carrying the command line and its captured output.
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return &CommandError{
		Command: r.Command,
		Output:  strings.TrimSpace(string(r.Output)),
		Err:     r.Err,
	}
}

// CommandError describes a failed command.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Output)
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Run executes a command through e and folds output and error into a Result.
func Run(e CommandExecutor, name string, args ...string) Result {
	output, err := e.Execute(name, args...)
	return Result{
		Command: FormatCommand(name, args...),
		Output:  output,
		Err:     err,
	}
}

// FormatCommand renders a command line for logs, quoting arguments that
// contain whitespace or are empty.
func FormatCommand(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
}

// String renders the call as a command line.
func (c CommandCall) String() string {
	return FormatCommand(c.Name, c.Args...)
}

// Execute calls the mock function
func (m *MockExecutor) Execute(name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return []byte(""), nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// Commands returns every recorded call rendered as a command line, in order.
func (m *MockExecutor) Commands() []string {
	commands := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		commands = append(commands, call.String())
	}
	return commands
}

// CountPrefix returns how many recorded command lines start with prefix.
func (m *MockExecutor) CountPrefix(prefix string) int {
	n := 0
	for _, c := range m.Commands() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
