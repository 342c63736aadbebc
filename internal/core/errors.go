package core

import "fmt"

type ErrorCode string

const (
	ErrBadRequest  ErrorCode = "DASH_BAD_REQUEST"
	ErrNotFound    ErrorCode = "DASH_NOT_FOUND"
	ErrConflict    ErrorCode = "DASH_CONFLICT_EXISTS"
	ErrSyncFailed  ErrorCode = "DASH_SYNC_FAILED"
	ErrSourceError ErrorCode = "DASH_SOURCE_ERROR"
	ErrInternal    ErrorCode = "DASH_INTERNAL"
	ErrRateLimited ErrorCode = "DASH_RATE_LIMITED"
	ErrUnavailable ErrorCode = "DASH_UNAVAILABLE"
)

// HTTPStatus returns the HTTP status code for this error code.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrBadRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrConflict:
		return 409
	case ErrRateLimited:
		return 429
	case ErrSourceError:
		return 502
	case ErrUnavailable:
		return 503
	default:
		return 500
	}
}

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
