package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors shared by every layer. Callers mark their errors with one
// of these through the ErrorBuilder and match them with errors.Is.
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	ErrLimitExceeded    = new(ErrCodeLimitExceeded, "purchase limit exceeded")

	statusCodeMap = map[error]int{
		ErrNotFound:         http.StatusNotFound,
		ErrValidation:       http.StatusBadRequest,
		ErrInvalidOperation: http.StatusBadRequest,
		ErrLimitExceeded:    http.StatusUnprocessableEntity,
		ErrDatabase:         http.StatusInternalServerError,
		ErrSystem:           http.StatusInternalServerError,
	}
)

const (
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"
	ErrCodeDatabase         = "database_error"
	ErrCodeLimitExceeded    = "limit_exceeded"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by code so that marked copies still compare equal
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsLimitExceeded reports whether err rejects a purchase because of a limit rule
func IsLimitExceeded(err error) bool {
	return errors.Is(err, ErrLimitExceeded)
}

// CodeFromErr returns the machine readable code of the sentinel err is marked with
func CodeFromErr(err error) string {
	for e := range statusCodeMap {
		if errors.Is(err, e) {
			return e.(*InternalError).Code
		}
	}
	return ErrCodeSystemError
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
