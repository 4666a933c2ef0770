/* errors.go
 * Error kinds shared by the bracket engine, the store and the surfaces that report them
 * Authors: Zachary Bower
 */

package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any store mutation
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable marks a failed read or write against the match store
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrMatchNotFound    = errors.New("match not found")
	ErrUnauthorized     = errors.New("admin session required")
	// ErrStructuralInconsistency is logged when stored rounds disagree with round 1, never returned to callers
	ErrStructuralInconsistency = errors.New("structural inconsistency")
)

// ValidationError describes malformed input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid is shorthand for building a ValidationError
func Invalid(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
