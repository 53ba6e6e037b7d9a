package ledger

import (
	"fmt"
	"strings"
)

// ErrValidation indicates missing or malformed required fields.
type ErrValidation struct {
	Fields  []string
	Message string
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s (fields: %s)", e.Message, strings.Join(e.Fields, ", "))
}

// ErrConflict indicates a duplicate application/invite or a repeated
// decision. Not retried automatically.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrAuthorization indicates the acting user holds the wrong role or does
// not own the resource.
type ErrAuthorization struct {
	Message string
}

func (e *ErrAuthorization) Error() string {
	return e.Message
}

// ErrNotFound indicates a referenced vacancy, candidate, or application is absent.
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrStore wraps a store/transaction failure. The transaction has been
// rolled back; the caller may retry the whole request, since the uniqueness
// constraints keep retries idempotent at the data level.
type ErrStore struct {
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("store error: %v", e.Err)
}

func (e *ErrStore) Unwrap() error {
	return e.Err
}
