package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategoryEligibility represents unmet send preconditions
	CategoryEligibility ErrorCategory = "eligibility"
	// CategoryRateLimit represents daily quota errors
	CategoryRateLimit ErrorCategory = "rate_limit"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryStore represents backing store errors
	CategoryStore ErrorCategory = "store"
	// CategoryNotification represents notification delivery errors
	CategoryNotification ErrorCategory = "notification"
)

// Error codes
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeSenderNotEligible    = "SENDER_NOT_ELIGIBLE"
	CodeRecipientNotEligible = "RECIPIENT_NOT_ELIGIBLE"
	CodeLimitReached         = "LIMIT_REACHED"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeNotificationFailed   = "NOTIFICATION_FAILED"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// User Input Errors (4xx)

// NewInvalidInputError creates an error for missing or empty required arguments
func NewInvalidInputError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidInput,
		Message:    message,
	}
}

// NewSenderNotEligibleError is returned when the sender has not checked in today
func NewSenderNotEligibleError(sender string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryEligibility,
		StatusCode: http.StatusBadRequest,
		Code:       CodeSenderNotEligible,
		Message:    "Sender must check in today before sending BM",
		Details: map[string]interface{}{
			"sender": sender,
		},
	}
}

// NewRecipientNotEligibleError is returned when the recipient has not checked in today
func NewRecipientNotEligibleError(recipient string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryEligibility,
		StatusCode: http.StatusBadRequest,
		Code:       CodeRecipientNotEligible,
		Message:    "Recipient must check in today to receive BM",
		Details: map[string]interface{}{
			"recipient": recipient,
		},
	}
}

// NewLimitReachedError is returned when the sender's daily quota is exhausted
func NewLimitReachedError(limit int) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusBadRequest,
		Code:       CodeLimitReached,
		Message:    "Daily send limit reached",
		Details: map[string]interface{}{
			"limit": limit,
		},
	}
}

// System Errors (5xx)

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    message,
		Cause:      cause,
	}
}

// NewStoreError wraps a backing store failure
func NewStoreError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryStore,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeStoreUnavailable,
		Message:    fmt.Sprintf("store error during %s", operation),
		Cause:      cause,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewNotificationError wraps a delivery failure. It is logged, never surfaced.
func NewNotificationError(identity string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotification,
		StatusCode: http.StatusBadGateway,
		Code:       CodeNotificationFailed,
		Message:    fmt.Sprintf("notification delivery failed for %s", identity),
		Cause:      cause,
		Details: map[string]interface{}{
			"identity": identity,
		},
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	// If already categorized, return as-is
	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	// Default to internal error
	return NewInternalError("unexpected error", err)
}

// HasCode reports whether err carries the given error code
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	return Categorize(err).Code == code
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsUserError determines if an error is a user error (4xx)
func IsUserError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.StatusCode >= 400 && catErr.StatusCode < 500
}

// IsSystemError determines if an error is a system error (5xx)
func IsSystemError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.StatusCode >= 500
}
