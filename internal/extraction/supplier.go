package extraction

import (
	"context"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Supplier yields a document's pages as ordered lines of spans.
// It is the only component that touches the rendering backend.
type Supplier interface {
	Extract(ctx context.Context, path string) (*types.Document, error)
}

// StaticSupplier serves pre-built documents keyed by path. Useful in tests and
// for replaying span dumps.
type StaticSupplier map[string]*types.Document

// Extract returns the stored document or a SourceError
func (s StaticSupplier) Extract(_ context.Context, path string) (*types.Document, error) {
	doc, ok := s[path]
	if !ok || doc == nil {
		return nil, &SourceError{Path: path, Message: "no such document"}
	}
	return doc, nil
}
