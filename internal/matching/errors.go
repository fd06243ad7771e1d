package matching

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/talent-matcher/internal/types"
)

// NotFoundError is returned when a candidate, job or match ID is unknown.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError is returned for invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ErrEmbeddingDisabled is returned when embedding is requested but no
// provider is configured.
var ErrEmbeddingDisabled = errors.New("embedding provider is not configured")

func invalidStatus(status string) *ValidationError {
	allowed := make([]string, 0, len(types.MatchStatuses))
	for _, s := range types.MatchStatuses {
		allowed = append(allowed, string(s))
	}
	return &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("invalid status %q, use one of: %s", status, strings.Join(allowed, ", ")),
	}
}
