// Package extraction supplies per-page text spans from source documents.
package extraction

import "fmt"

// SourceError reports a document that could not be opened or parsed
type SourceError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source unreadable %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("source unreadable %s: %s", e.Path, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
