// Package server provides the HTTP REST API for the matching engine.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/talent-matcher/internal/matching"
)

// ErrValidation indicates request validation failure before the service is called.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		requestErr  *ErrValidation
		validateErr *matching.ValidationError
		notFoundErr *matching.NotFoundError
	)
	switch {
	case errors.As(err, &requestErr), errors.As(err, &validateErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, matching.ErrEmbeddingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage hides internal error text from 5xx responses.
func clientMessage(status int, err error) string {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		return "Internal server error"
	}
	return err.Error()
}
