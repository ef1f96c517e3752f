// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling and exit codes for llmchat commands.
//
// STANDARDIZED PATTERN:
//   - Handlers return errors, main displays them and picks the exit code
//   - Failures already shown to the user are wrapped in ReportedError
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/llm"
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
	// ExitNetworkError indicates the LLM server could not be used
	ExitNetworkError = 5
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "config", "ask")
	Action  string // Action being performed (e.g., "init", "send")
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

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ReportedError carries an exit code for a failure the command has already
// shown to the user. DisplayError prints nothing for it.
type ReportedError struct {
	Code int
	Err  error
}

func (e *ReportedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err to w in a consistent format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var reported *ReportedError
	if errors.As(err, &reported) {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(w, "Run 'llmchat help' for usage.")
	}
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var reported *ReportedError
	if errors.As(err, &reported) {
		return reported.Code
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	var validateErr config.ValidationError
	if errors.As(err, &validateErrs) || errors.As(err, &validateErr) || errors.Is(err, config.ErrConfigRead) {
		return ExitConfigError
	}

	if llm.IsConnectionError(err) || llm.IsInvalidResponse(err) {
		return ExitNetworkError
	}

	return ExitGeneralError
}
