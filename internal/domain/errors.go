package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrQueryTooShort        = NewDomainError(ErrCodeValidation, "search query must be at least 2 characters")
	ErrInvalidEntityType    = NewDomainError(ErrCodeValidation, "invalid entity type")
	ErrInvalidPostCategory  = NewDomainError(ErrCodeValidation, "invalid post category")
	ErrInvalidNoteType      = NewDomainError(ErrCodeValidation, "invalid note type")
	ErrInvalidRating        = NewDomainError(ErrCodeValidation, "rating must be between 1 and 5")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrUniversityNotFound = NewDomainError(ErrCodeNotFound, "university not found")
	ErrUserNotFound       = NewDomainError(ErrCodeNotFound, "user not found")
	ErrPostNotFound       = NewDomainError(ErrCodeNotFound, "post not found")
	ErrNoteNotFound       = NewDomainError(ErrCodeNotFound, "note not found")
	ErrReviewNotFound     = NewDomainError(ErrCodeNotFound, "review not found")
)

// Already exists errors
var (
	ErrReviewAlreadyExists   = NewDomainError(ErrCodeAlreadyExists, "user has already reviewed this university")
	ErrUsernameAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "username is taken")
)

// Authorization errors
var (
	ErrInvalidToken = NewDomainError(ErrCodeUnauthorized, "invalid token")
)
