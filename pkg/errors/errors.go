// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Roster.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Roster errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeMalformedDocument indicates a persona document whose front-matter
	// block is missing or cannot be parsed.
	CodeMalformedDocument ErrorCode = "MALFORMED_DOCUMENT"

	// CodeValidation indicates a semantic field violation in an otherwise
	// well-formed definition. Advisory: never blocks loading.
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// CodeDuplicateName indicates two documents declared the same agent name.
	CodeDuplicateName ErrorCode = "DUPLICATE_NAME"

	// CodeNotFound indicates a registry lookup miss.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeStoreError indicates an audit store failure.
	CodeStoreError ErrorCode = "STORE_ERROR"
)

// RosterError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type RosterError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *RosterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *RosterError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *RosterError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Message     string                 `json:"message"`
		Code        string                 `json:"code"`
		Err         string                 `json:"error,omitempty"`
		Context     map[string]interface{} `json:"context,omitempty"`
		Recoverable bool                   `json:"recoverable"`
	}{
		Message:     e.Message,
		Code:        string(e.Code),
		Err:         errString(e.Err),
		Context:     e.Context,
		Recoverable: e.Recoverable,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// New creates a new RosterError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *RosterError {
	return &RosterError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *RosterError) WithContext(key string, value interface{}) *RosterError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *RosterError) WithRecoverable(recoverable bool) *RosterError {
	e.Recoverable = recoverable
	return e
}

// AsRosterError attempts to convert an error to a RosterError.
// Returns the error as RosterError if it is one, or wraps it otherwise.
func AsRosterError(err error) *RosterError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RosterError); ok {
		return re
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the ErrorCode of err, or CodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if re, ok := err.(*RosterError); ok {
		return re.Code
	}
	return CodeInternal
}

// NotFound builds the lookup-miss error for an agent name.
func NotFound(name string) *RosterError {
	return New(CodeNotFound, fmt.Sprintf("agent %q not registered", name), nil).
		WithContext("agent", name).
		WithRecoverable(true)
}

// Malformed builds the error for an unparsable persona document.
func Malformed(path, msg string, cause error) *RosterError {
	return New(CodeMalformedDocument, msg, cause).
		WithContext("path", path).
		WithRecoverable(true)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *RosterError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}
