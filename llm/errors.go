package llm

import (
	"errors"
	"time"
)

// Error represents a provider-neutral LLM error.
type Error struct {
	Type        ErrorType
	Message     string
	Retryable   bool
	RetryAfter  *time.Duration
	StatusCode  int
	ProviderErr error // Original provider-specific error
}

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeProvider       ErrorType = "provider"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ProviderErr != nil {
		return e.Message + ": " + e.ProviderErr.Error()
	}
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *Error) Unwrap() error {
	return e.ProviderErr
}

// TypeOf returns the ErrorType of an error, or ErrorTypeUnknown when the
// error is not an *Error.
func TypeOf(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return TypeOf(err) == ErrorTypeConfig
}

// IsAuthError checks if an error is an authentication/authorization error.
func IsAuthError(err error) bool {
	return TypeOf(err) == ErrorTypeAuth
}

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}

// IsNetworkError checks if an error is a network-level error.
func IsNetworkError(err error) bool {
	t := TypeOf(err)
	return t == ErrorTypeNetwork || t == ErrorTypeTimeout
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// ExtractRetryAfter extracts the retry-after duration from an error.
func ExtractRetryAfter(err error) *time.Duration {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.RetryAfter
	}
	return nil
}

// NewConfigError creates a new configuration error. Configuration errors are
// fatal and surface before any file or network activity begins.
func NewConfigError(message string) *Error {
	return &Error{
		Type:      ErrorTypeConfig,
		Message:   message,
		Retryable: false,
	}
}

// NewAuthError creates a new authentication error.
func NewAuthError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeAuth,
		Message:     message,
		Retryable:   false,
		ProviderErr: providerErr,
	}
}

// NewRateLimitError creates a new rate limit error.
func NewRateLimitError(message string, retryAfter *time.Duration, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeRateLimit,
		Message:     message,
		Retryable:   true,
		RetryAfter:  retryAfter,
		ProviderErr: providerErr,
	}
}

// NewNetworkError creates a new network error.
func NewNetworkError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeNetwork,
		Message:     message,
		Retryable:   true,
		ProviderErr: providerErr,
	}
}

// NewProviderError creates a new provider error.
func NewProviderError(message string, providerErr error) *Error {
	return &Error{
		Type:        ErrorTypeProvider,
		Message:     message,
		Retryable:   false,
		ProviderErr: providerErr,
	}
}
