package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/arthur-debert/nanosnap/nanosnap/store"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "list", "convert")
	Cause       string   // The underlying cause (e.g., "snapshot not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}
	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}
	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}
	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewNotFoundError creates an error for a missing snapshot key
func NewNotFoundError(operation, key string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("snapshot %q not found", key),
		Suggestions: suggestions,
	}
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewFilterError creates an error for an invalid --filter expression
func NewFilterError(operation, filter string, err error) *CLIError {
	return &CLIError{
		Operation: operation,
		Cause:     fmt.Sprintf("invalid filter %q", filter),
		Details:   err.Error(),
		Suggestions: []string{
			`Filters are boolean expressions, e.g. 'size > 100 && key startsWith "TestLogin"'`,
			"Available fields: key, name, size, value",
		},
		Underlying: err,
	}
}

// NewStoreError creates an error for snapshot file issues
func NewStoreError(operation string, underlying error, suggestions ...string) *CLIError {
	cause := "snapshot store operation failed"
	var partial *store.PartialLoadError

	switch {
	case errors.As(underlying, &partial):
		cause = fmt.Sprintf("%d shard file(s) could not be loaded", len(partial.Skipped))
	case errors.Is(underlying, store.ErrParse):
		cause = "snapshot file is not valid"
	case errors.Is(underlying, fs.ErrPermission):
		cause = "insufficient permissions to access snapshot files"
	case errors.Is(underlying, fs.ErrNotExist):
		cause = "snapshot files not found"
	}

	details := ""
	if underlying != nil {
		details = underlying.Error()
	}
	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     details,
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// Common error messages and suggestions
var (
	CommonSuggestions = struct {
		CheckDir    string
		CheckFormat string
		CheckKey    string
		CheckConfig string
		TryVerify   string
		TryDryRun   string
	}{
		CheckDir:    "Verify --dir points to the snapshot directory",
		CheckFormat: "Verify --format matches the layout on disk (js or json)",
		CheckKey:    "Verify the snapshot key exists (try 'list' first)",
		CheckConfig: "Check your configuration file or NANOSNAP_* environment variables",
		TryVerify:   "Run 'nanosnap verify' for details",
		TryDryRun:   "Use --dry-run to preview the operation",
	}
)
