package services

import (
	"errors"

	sentinal_errors "sentinal-social/pkg/errors"
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, sentinal_errors.ErrInvalidInput):
		return 400
	case errors.Is(err, sentinal_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, sentinal_errors.ErrForbidden):
		return 403
	case errors.Is(err, sentinal_errors.ErrNotFound):
		return 404
	case errors.Is(err, sentinal_errors.ErrAlreadyExists), errors.Is(err, sentinal_errors.ErrConflict):
		return 409
	case errors.Is(err, sentinal_errors.ErrRateLimited):
		return 429
	case errors.Is(err, sentinal_errors.ErrServiceUnavailable):
		return 503
	default:
		return 500
	}
}

// ErrorCode is the machine readable code sent alongside an error response.
func ErrorCode(err error) string {
	switch HTTPStatus(err) {
	case 400:
		return "INVALID_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 429:
		return "RATE_LIMITED"
	case 503:
		return "UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
