// Package errors provides structured CLI error types for bosun.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes for CLI errors.
const (
	ExitSuccess   = 0  // Successful execution
	ExitGeneral   = 1  // General error
	ExitConfig    = 4  // Configuration error
	ExitExecution = 6  // Execution failure
	ExitUsage     = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// CommandRequired returns the usage error for a missing command argument.
// The launcher contract pins this exit code to 1.
func CommandRequired() *CLIError {
	return &CLIError{
		Message: "No command given",
		Hint:    "Usage: bosun run [flags] -- <command> [args...]",
		Code:    ExitGeneral,
	}
}

// EnvFileUnreadable returns an error for an env file that exists but
// cannot be read.
func EnvFileUnreadable(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot read env file: %s", path),
		Hint:    "Check file permissions, or point --env-file at a readable file",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// EnvFileInvalid returns an error for a strict-mode parse failure.
func EnvFileInvalid(path string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid env file: %s", path),
		Hint:    "Fix the reported line, or drop --strict-env to skip malformed lines",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// SpawnFailed returns an error when the child command could not be started.
func SpawnFailed(command string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to start command: %s", command),
		Hint:    "Check that the command exists and the configured shell is in PATH",
		Cause:   cause,
		Code:    ExitExecution,
	}
}

// ProjectRootNotFound returns an error when an explicit root is unusable.
func ProjectRootNotFound(dir string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Cannot use project root: %s", dir),
		Hint:    "Pass --root with an existing directory",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ManifestInvalid returns an error for an unusable service manifest.
func ManifestInvalid(cause error) *CLIError {
	return &CLIError{
		Message: "Invalid service manifest",
		Hint:    "Fix bosun.yaml at the project root, or run 'bosun doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ServiceNotFound returns an error for an undeclared service name.
func ServiceNotFound(name string, declared []string) *CLIError {
	hint := "Declare the service in bosun.yaml at the project root"
	if len(declared) > 0 {
		hint = fmt.Sprintf("Declared services: %s", strings.Join(declared, ", "))
	}

	return &CLIError{
		Message: fmt.Sprintf("Service not found: %s", name),
		Hint:    hint,
		Code:    ExitConfig,
	}
}

// NoServices returns an error when the manifest declares nothing.
func NoServices() *CLIError {
	return &CLIError{
		Message: "No services declared",
		Hint:    "Add a services section to bosun.yaml at the project root",
		Code:    ExitConfig,
	}
}

// ServiceFailed returns an error for a service lifecycle failure.
func ServiceFailed(operation, name string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s service: %s", operation, name),
		Hint:    "Run 'bosun service status' and check the service log",
		Cause:   cause,
		Code:    ExitExecution,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your bosun config directory or run 'bosun doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}
