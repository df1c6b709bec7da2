// Package errors provides the error taxonomy for the certrenew CLI tool.
//
// Errors fall into two tiers. Fatal errors (bad or missing configuration,
// failed validation, unexpected internal failures) end the run with a
// non-zero exit code once the reverse proxy has been restarted. Isolated
// errors (certificate issuance, certificate copy, proxy stop/start) are
// logged with their context and the run carries on.
//
// # Error Types
//
// RenewError is the primary error type, containing:
//   - Code: Categorizes the error (CONFIG, ISSUE, COPY, etc.)
//   - Message: Human-readable error description
//   - Domain: The domain name involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Usage
//
//	// Configuration problem, always fatal
//	return errors.Config("No domains in configuration file")
//
//	// Wrapping an underlying error
//	return errors.Wrap(errors.ErrCodeIssue, "certbot failed", err)
//
//	// Deciding how to treat an error
//	if errors.IsFatal(err) {
//	    os.Exit(1)
//	}
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison:
//
//	if errors.Is(err, errors.ErrNoDomains) {
//	    // Handle missing domain list
//	}
//
// Use errors.As for type assertion:
//
//	var renewErr *errors.RenewError
//	if errors.As(err, &renewErr) {
//	    fmt.Printf("Error code: %s, Domain: %s\n", renewErr.Code, renewErr.Domain)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeConfig     ErrorCode = "CONFIG"     // Configuration missing or malformed
	ErrCodeValidation ErrorCode = "VALIDATION" // Input validation failed
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"  // Resource not found
	ErrCodeIssue      ErrorCode = "ISSUE"      // Certificate issuance failed
	ErrCodeCopy       ErrorCode = "COPY"       // Certificate copy into a volume failed
	ErrCodeProxy      ErrorCode = "PROXY"      // Reverse proxy stop/start failed
	ErrCodePermission ErrorCode = "PERMISSION" // Permission denied
	ErrCodeInternal   ErrorCode = "INTERNAL"   // Internal/unexpected error
)

// RenewError represents a structured error with context about the operation.
type RenewError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain name (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *RenewError) Error() string {
	parts := make([]string, 0, 3)
	if e.Domain != "" {
		parts = append(parts, "domain "+e.Domain)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error for error chain traversal.
func (e *RenewError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Sentinels with a message match on code and message, bare codes match on code.
func (e *RenewError) Is(target error) bool {
	t, ok := target.(*RenewError)
	if !ok {
		return false
	}
	if t.Message == "" {
		return e.Code == t.Code
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = &RenewError{Code: ErrCodeConfig, Message: "configuration file not found"}

	// ErrConfigInvalid indicates the configuration file could not be parsed.
	ErrConfigInvalid = &RenewError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrNoDomains indicates the domain list is missing or is not a list.
	ErrNoDomains = &RenewError{Code: ErrCodeConfig, Message: "No domains in configuration file"}

	// ErrDomainNotConfigured indicates a requested domain is not in the configuration.
	ErrDomainNotConfigured = &RenewError{Code: ErrCodeConfig, Message: "domain not in configuration"}

	// ErrInvalidDomain indicates the domain name is not valid.
	ErrInvalidDomain = &RenewError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrInvalidVolume indicates the docker volume name is not valid.
	ErrInvalidVolume = &RenewError{Code: ErrCodeValidation, Message: "invalid volume"}

	// ErrUnknownProxyType indicates the proxy type has no controller.
	ErrUnknownProxyType = &RenewError{Code: ErrCodeConfig, Message: "unknown proxy type"}

	// ErrCertbotNotInstalled indicates certbot is not installed.
	ErrCertbotNotInstalled = &RenewError{Code: ErrCodeIssue, Message: "certbot is not installed"}

	// ErrCertNotInstalled indicates no certificate is present in a volume.
	ErrCertNotInstalled = &RenewError{Code: ErrCodeNotFound, Message: "certificate not installed"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &RenewError{Code: ErrCodePermission, Message: "root privileges required"}
)

// Config creates a configuration error with a custom message.
func Config(msg string) error {
	return &RenewError{
		Code:    ErrCodeConfig,
		Message: msg,
	}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &RenewError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &RenewError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapDomain creates an error with domain context and underlying error.
func WrapDomain(code ErrorCode, domain string, err error) error {
	return &RenewError{
		Code:   code,
		Domain: domain,
		Err:    err,
	}
}

// CodeOf returns the code of the first RenewError in err's chain.
// Errors of any other type are reported as ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var renewErr *RenewError
	if errors.As(err, &renewErr) {
		return renewErr.Code
	}
	return ErrCodeInternal
}

// IsFatal reports whether err must end the run with a non-zero exit code.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrCodeConfig, ErrCodeValidation, ErrCodePermission, ErrCodeInternal:
		return true
	default:
		return false
	}
}

// Recovered converts a recovered panic value into an internal error.
func Recovered(v interface{}) error {
	if err, ok := v.(error); ok {
		return Wrap(ErrCodeInternal, "unexpected error", err)
	}
	return Wrap(ErrCodeInternal, "unexpected error", fmt.Errorf("%v", v))
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
