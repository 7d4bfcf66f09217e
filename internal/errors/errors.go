package errors

import "fmt"

// ErrorCode represents a Quip error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrAmbiguousInput   ErrorCode = "AMBIGUOUS_INPUT"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrRulesInvalid     ErrorCode = "RULES_INVALID"     // 422
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE" // 503
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// QuipError represents a structured error with code, status, and details.
type QuipError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *QuipError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *QuipError {
	return &QuipError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewAmbiguousInput creates a 400 error for when both a raw tag string and
// pre-split tag arrays are provided.
func NewAmbiguousInput() *QuipError {
	return &QuipError{
		Code:    ErrAmbiguousInput,
		Status:  400,
		Message: "cannot specify both raw tags and hard/soft arrays; use one input form",
	}
}

// NewNotFound creates a 404 error for an unknown resource.
func NewNotFound(identifier string) *QuipError {
	return &QuipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewRulesInvalid creates a 422 error when a rule table cannot be used.
func NewRulesInvalid(source, reason string) *QuipError {
	return &QuipError{
		Code:    ErrRulesInvalid,
		Status:  422,
		Message: fmt.Sprintf("invalid rule table %s: %s", source, reason),
		Details: map[string]any{"source": source, "reason": reason},
	}
}

// NewStoreUnavailable creates a 503 error when the history backend cannot be opened.
func NewStoreUnavailable(backend string, err error) *QuipError {
	msg := fmt.Sprintf("history store %q unavailable", backend)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &QuipError{
		Code:    ErrStoreUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"backend": backend},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *QuipError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &QuipError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a QuipError with the given code.
func Is(err error, code ErrorCode) bool {
	if qErr, ok := err.(*QuipError); ok {
		return qErr.Code == code
	}
	return false
}
