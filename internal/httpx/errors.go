package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"leasesync/internal/dnstypes"
	"leasesync/internal/lock"
)

// Business error codes
const (
	CodeSuccess = 0

	// Authentication errors (1000-1099)
	CodeUnauthorized = 1001 // Not logged in / Token missing
	CodeInvalidToken = 1002 // Token invalid or bad credentials
	CodeTokenExpired = 1003

	// Parameter errors (2000-2099)
	CodeParamInvalid = 2002

	// Resource/Business errors (3000-3999)
	CodeNotFound      = 3001
	CodeStateConflict = 3003 // A sync pass is already running

	// System errors (5000-5999)
	CodeInternalError  = 5001
	CodeDatabaseError  = 5002
	CodeSourceError    = 5003 // Lease source failure
	CodeSinkError      = 5004 // DNS sink failure
	CodeSinkAuthError  = 5005
	CodeServiceMissing = 5006 // Optional component not configured
	CodeRecordError    = 5007 // Pass finished with failed records
)

// AppError represents an application error with HTTP status and business code
type AppError struct {
	HTTPStatus int         // HTTP status code
	Code       int         // Business error code
	Message    string      // User-facing error message
	Err        error       // Internal error (for logging only, not returned to client)
	Data       interface{} // Additional data, such as a failed pass report
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// WithData adds additional data to the error
func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}

// NewAppError creates a new AppError
func NewAppError(httpStatus, code int, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// ErrUnauthorized creates a 401 unauthorized error
func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// ErrInvalidToken creates a 401 invalid token error
func ErrInvalidToken(message string) *AppError {
	if message == "" {
		message = "invalid token"
	}
	return NewAppError(http.StatusUnauthorized, CodeInvalidToken, message, nil)
}

// ErrTokenExpired creates a 401 token expired error
func ErrTokenExpired(message string) *AppError {
	if message == "" {
		message = "token expired"
	}
	return NewAppError(http.StatusUnauthorized, CodeTokenExpired, message, nil)
}

// ErrParamInvalid creates a 400 parameter invalid error
func ErrParamInvalid(message string) *AppError {
	if message == "" {
		message = "parameter format error"
	}
	return NewAppError(http.StatusBadRequest, CodeParamInvalid, message, nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "resource not found"
	}
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

// ErrStateConflict creates a 409 state conflict error
func ErrStateConflict(message string) *AppError {
	if message == "" {
		message = "current state does not allow operation"
	}
	return NewAppError(http.StatusConflict, CodeStateConflict, message, nil)
}

// ErrInternalError creates a 500 internal error
func ErrInternalError(message string, err error) *AppError {
	if message == "" {
		message = "internal error"
	}
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, err)
}

// ErrDatabaseError creates a 500 database error
func ErrDatabaseError(message string, err error) *AppError {
	if message == "" {
		message = "database error"
	}
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, message, err)
}

// ErrServiceUnavailable creates a 503 error for a component that is not configured
func ErrServiceUnavailable(message string) *AppError {
	if message == "" {
		message = "service not configured"
	}
	return NewAppError(http.StatusServiceUnavailable, CodeServiceMissing, message, nil)
}

// FromSyncError maps a failed sync pass to an AppError
func FromSyncError(err error) *AppError {
	if errors.Is(err, lock.ErrLocked) {
		return ErrStateConflict("sync pass already running")
	}

	kind := dnstypes.KindOf(err)
	switch {
	case kind == "":
		return ErrInternalError("sync failed", err)
	case !kind.Fatal():
		return NewAppError(http.StatusBadGateway, CodeRecordError, "some records failed to apply", err)
	case dnstypes.IsKind(err, dnstypes.KindSinkAuth):
		return NewAppError(http.StatusBadGateway, CodeSinkAuthError, "dns sink rejected credentials", err)
	case dnstypes.IsKind(err, dnstypes.KindSinkUnavailable):
		return NewAppError(http.StatusBadGateway, CodeSinkError, "dns sink failure", err)
	}
	return NewAppError(http.StatusBadGateway, CodeSourceError, "lease source failure", err)
}
