package metadata

import (
	"fmt"

	"stacks/internal/services"
)

// RateLimitError reports that the primary provider kept refusing requests
// for the whole retry budget. It unwraps to services.ErrTransient, so a
// later run may well succeed, and to the provider's final error.
type RateLimitError struct {
	Attempts int
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("provider rate limit persisted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RateLimitError) Unwrap() []error {
	return []error{services.ErrTransient, e.Err}
}
