package prices

import (
	"fmt"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// ErrNotFound is returned when a price record id does not resolve.
var ErrNotFound = models.ErrNotFound

// ValidationError reports malformed or missing input. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StoreError reports a failure of the underlying store. The operation was
// rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
