package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidAssertion indicates the identity proof was rejected by
	// the provider (forged, malformed, or expired ID token).
	ErrCodeInvalidAssertion ErrorCode = "invalid_assertion"
	// ErrCodeProfileLookup indicates the profile store was unreachable or
	// the record was missing after a creation attempt.
	ErrCodeProfileLookup ErrorCode = "profile_lookup"
	// ErrCodeCredentialVerification indicates the session credential was
	// absent, forged, expired, or revoked.
	ErrCodeCredentialVerification ErrorCode = "credential_verification"
	// ErrCodeStaleCredential indicates a valid credential exceeded the
	// critical-tier freshness window. Expected and frequent; never logged
	// as an error.
	ErrCodeStaleCredential ErrorCode = "stale_credential"
	// ErrCodeCookieWrite indicates issuance could not persist trust cookies.
	ErrCodeCookieWrite ErrorCode = "cookie_write"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidAssertion creates a new InvalidAssertion error wrapping the provider failure.
func InvalidAssertion(err error) *AppError {
	return &AppError{Code: ErrCodeInvalidAssertion, Message: "identity assertion rejected", Cause: err}
}

// ProfileLookup creates a new ProfileLookup error.
func ProfileLookup(err error) *AppError {
	return &AppError{Code: ErrCodeProfileLookup, Message: "profile lookup failed", Cause: err}
}

// CredentialVerification creates a new CredentialVerification error.
func CredentialVerification(err error) *AppError {
	return &AppError{Code: ErrCodeCredentialVerification, Message: "session credential rejected", Cause: err}
}

// StaleCredential creates a new StaleCredential error.
func StaleCredential(message string) *AppError {
	return &AppError{Code: ErrCodeStaleCredential, Message: message}
}

// CookieWrite creates a new CookieWrite error.
func CookieWrite(err error) *AppError {
	return &AppError{Code: ErrCodeCookieWrite, Message: "trust cookie write failed", Cause: err}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidAssertion checks if an error is an InvalidAssertion error.
func IsInvalidAssertion(err error) bool {
	return isCode(err, ErrCodeInvalidAssertion)
}

// IsProfileLookup checks if an error is a ProfileLookup error.
func IsProfileLookup(err error) bool {
	return isCode(err, ErrCodeProfileLookup)
}

// IsCredentialVerification checks if an error is a CredentialVerification error.
func IsCredentialVerification(err error) bool {
	return isCode(err, ErrCodeCredentialVerification)
}

// IsStaleCredential checks if an error is a StaleCredential error.
func IsStaleCredential(err error) bool {
	return isCode(err, ErrCodeStaleCredential)
}

// IsCookieWrite checks if an error is a CookieWrite error.
func IsCookieWrite(err error) bool {
	return isCode(err, ErrCodeCookieWrite)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
