// Package apperr defines the service-wide error taxonomy and its HTTP
// mapping. Services wrap these sentinels with fmt.Errorf("%w"); the API
// layer maps them to status codes in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limit exceeded")

	// Provider-originated failures. These are recorded against the
	// execution or evaluation, never retried automatically.
	ErrProviderUnreachable = errors.New("provider unreachable")
	ErrProviderRejected    = errors.New("provider rejected request")
	ErrProviderMalformed   = errors.New("provider returned malformed response")
	ErrScoreParse          = errors.New("score parse error")

	ErrInsufficientExecutions = errors.New("at least 2 executions required")
	ErrInvalidCriteria        = errors.New("invalid criteria")
)

// Validationf wraps ErrValidation with field-level detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound naming the missing resource.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// HTTPStatus maps an error to its response status code. Unknown errors
// map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientExecutions),
		errors.Is(err, ErrInvalidCriteria):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrProviderUnreachable),
		errors.Is(err, ErrProviderRejected),
		errors.Is(err, ErrProviderMalformed):
		return http.StatusBadGateway
	case errors.Is(err, ErrScoreParse):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
