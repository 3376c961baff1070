// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the CLI.
//
// Handlers always return errors; main decides how to display them and
// which exit code to use.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/corpus"
	"github.com/jeranaias/raspdbot/internal/ollama"
	"github.com/jeranaias/raspdbot/internal/storage"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates Ollama is unreachable
	ExitNetworkError = 5
	// ExitNotFoundError indicates a model, corpus or session was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "export")
	Action  string // Action being performed (e.g., "load")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // Type of resource (e.g., "model", "session")
	ID       string // Identifier that was not found
	Hint     string // What to do about it (optional)
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	if e.Hint != "" {
		msg += "\n" + e.Hint
	}
	return msg
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ErrInvalidFormat creates an error for invalid format.
func ErrInvalidFormat(field, value, expected string) error {
	return &ValidationError{Field: field, Value: value, Reason: "invalid format", Example: expected}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes an error in a consistent format. In JSON mode the
// error is written as a JSON document instead.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes an error as JSON.
func DisplayErrorJSON(w io.Writer, err error) {
	output := map[string]any{
		"error":     err.Error(),
		"success":   false,
		"exit_code": GetExitCode(err),
	}

	var cmdErr *CommandError
	var valErr *ValidationError
	var nfErr *NotFoundError
	switch {
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	case errors.As(err, &valErr):
		output["error_type"] = "validation_error"
		output["field"] = valErr.Field
	case errors.As(err, &nfErr):
		output["error_type"] = "not_found_error"
		output["resource"] = nfErr.Resource
		output["id"] = nfErr.ID
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// HandleErrorAndExit displays an error on stderr and exits with the
// matching exit code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	out := io.Writer(os.Stderr)
	if jsonMode {
		out = os.Stdout
	}
	DisplayError(out, err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var notFoundErr *NotFoundError
	var configErrs config.ValidateErrors
	var configErr config.ValidationError
	switch {
	case errors.As(err, &notFoundErr),
		ollama.IsModelNotFound(err),
		errors.Is(err, corpus.ErrNotFound),
		errors.Is(err, storage.ErrSessionNotFound):
		return ExitNotFoundError
	case errors.Is(err, corpus.ErrEmpty),
		errors.As(err, &configErrs),
		errors.As(err, &configErr):
		return ExitConfigError
	case ollama.IsTimeout(err):
		return ExitTimeoutError
	case ollama.IsNotRunning(err), errors.Is(err, &ollama.ClientError{Type: ollama.ErrTypeConnection}):
		return ExitNetworkError
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "config"):
		return ExitConfigError
	case strings.Contains(errMsg, "timed out"), strings.Contains(errMsg, "deadline exceeded"):
		return ExitTimeoutError
	}
	return ExitGeneralError
}
