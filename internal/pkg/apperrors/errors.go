package apperrors

import "errors"

// Error taxonomy. Every error reaching the HTTP boundary wraps exactly one of
// these sentinels.
var (
	// ErrValidationFailed marks missing or malformed client input (400).
	ErrValidationFailed = errors.New("validation failed")
	// ErrResourceNotFound marks a lookup with no matching row (404).
	ErrResourceNotFound = errors.New("resource not found")
	// ErrConflict marks a uniqueness constraint violation (409).
	ErrConflict = errors.New("conflict")
	// ErrStore marks any other persistence failure (500).
	ErrStore = errors.New("store error")
)

// Client facing messages shared by every resource.
const (
	MsgMissingFields  = "Missing required fields"
	MsgNoData         = "No data provided"
	MsgInvalidBody    = "Invalid request body"
	MsgInternalServer = "Internal server error"
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	// Cause is the underlying failure, kept for logs.
	Cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the taxonomy sentinel and the cause to errors.Is/As.
func (e *CustomError) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewBadRequestError creates a validation error with a client message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string, cause error) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
		Cause:   cause,
	}
}

// NewStoreError wraps a persistence failure. The client message is the text
// of the innermost error, i.e. the driver's own description.
func NewStoreError(cause error) error {
	message := "unknown store error"
	if cause != nil {
		message = rootCause(cause).Error()
	}
	return &CustomError{
		Err:     ErrStore,
		Message: message,
		Cause:   cause,
	}
}

// Message returns the client facing message of err.
func Message(err error) string {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
