// Package selection picks a ranked, deduplicated, per-document-capped list of
// sections and cuts the top sections into bounded excerpts.
package selection

import "fmt"

// Error represents an invalid selection configuration
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
