// Package errors provides custom error types for placelink.
// The matching core never fails; these types describe what can go wrong
// around it: reading exports, writing interchange files, and talking to the
// Wikidata and OpenStreetMap APIs during write-back.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Aliases for the standard library helpers so callers need a single import.
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested entity or relation does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that the target already carries the wanted value
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict indicates that the target carries a different value that must not be overwritten
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCredentialsRequired indicates that a write was requested without credentials
	ErrCredentialsRequired = errors.New("credentials required")

	// ErrCredentialsInvalid indicates that the remote service rejected the credentials
	ErrCredentialsInvalid = errors.New("credentials invalid")

	// ErrRateLimited indicates that the remote API asked us to slow down
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that a remote service is temporarily unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents a missing remote entity.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports that a target already holds a value for the field
// being written. Existing equal to Wanted means the link is already in place.
type ConflictError struct {
	Resource string
	ID       string
	Field    string
	Existing string
	Wanted   string
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Existing == e.Wanted {
		return fmt.Sprintf("%s %s already has %s=%s", e.Resource, e.ID, e.Field, e.Existing)
	}
	return fmt.Sprintf("%s %s already has %s=%s (wanted %s)", e.Resource, e.ID, e.Field, e.Existing, e.Wanted)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	if e.Existing == e.Wanted {
		return target == ErrAlreadyExists
	}
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(resource, id, field, existing, wanted string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id, Field: field, Existing: existing, Wanted: wanted}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error returned by a remote API.
// Code carries the API's own error code when the service reports one
// (MediaWiki's "no-such-entity", for example).
type APIError struct {
	Service    string
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("API error from %s (%s): %s", e.Service, e.Code, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests || e.Code == "ratelimited" || e.Code == "maxlag":
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrServiceUnavailable
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return target == ErrCredentialsInvalid
	case e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone:
		return target == ErrNotFound
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// AuthenticationError represents an authentication/authorization error
type AuthenticationError struct {
	Service string
	Method  string // "oauth2", "basic", "botpassword"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("authentication error for %s (%s): %s", e.Service, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrCredentialsRequired || target == ErrCredentialsInvalid
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(service, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Service: service,
		Method:  method,
		Message: message,
		Err:     err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "csv", "xml"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error reports an already present value
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict checks if an error reports a differing existing value
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCredentialsError checks if an error is related to credentials
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrCredentialsRequired) || errors.Is(err, ErrCredentialsInvalid)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsServiceUnavailable checks if an error indicates service unavailability
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
