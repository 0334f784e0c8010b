// Package pipeline wires span extraction, structure inference, and persona
// ranking into single-document and collection runs.
package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/jonathan/outline-ranker/internal/extraction"
	"github.com/jonathan/outline-ranker/internal/fontprofile"
	"github.com/jonathan/outline-ranker/internal/heading"
	"github.com/jonathan/outline-ranker/internal/normalize"
	"github.com/jonathan/outline-ranker/internal/persona"
	"github.com/jonathan/outline-ranker/internal/sections"
	"github.com/jonathan/outline-ranker/internal/selection"
	"github.com/jonathan/outline-ranker/internal/title"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Document string `json:"document,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs. It may be called
// from several worker goroutines at once.
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for the pipeline
type Options struct {
	Normalize             normalize.Config
	FontProfile           fontprofile.Config
	Title                 title.Config
	MetadataTitleFallback bool
	Heading               heading.Config
	Selection             selection.Config
	Families              *persona.Table
	Workers               int
	Logger                *slog.Logger
	OnProgress            ProgressCallback
	Now                   func() time.Time
}

// DefaultOptions returns options with every component at its defaults
func DefaultOptions() Options {
	return Options{
		Normalize:   normalize.DefaultConfig(),
		FontProfile: fontprofile.DefaultConfig(),
		Title:       title.DefaultConfig(),
		Heading:     heading.DefaultConfig(),
		Selection:   selection.DefaultConfig(),
		Families:    persona.DefaultTable(),
		Workers:     4,
	}
}

// Pipeline runs documents through the structure and ranking stages
type Pipeline struct {
	supplier   extraction.Supplier
	opts       Options
	classifier *heading.Classifier
	segmenter  *sections.Segmenter
	logger     *slog.Logger
}

// New creates a pipeline reading documents through supplier
func New(supplier extraction.Supplier, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Families == nil {
		opts.Families = persona.DefaultTable()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	classifier := heading.New(opts.Heading)
	return &Pipeline{
		supplier:   supplier,
		opts:       opts,
		classifier: classifier,
		segmenter:  sections.NewSegmenter(classifier),
		logger:     logger,
	}
}

// emitProgress calls the progress callback if configured
func (p *Pipeline) emitProgress(step, category, document, message string, content any) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Document: document,
			Message:  message,
			Content:  content,
		})
	}
}

// BatchResult holds the outcome of a batch run
type BatchResult struct {
	Processed int
	Skipped   int
	Failed    int
	Failures  []Failure
}

// Failure records one document that was skipped or failed
type Failure struct {
	Document string `json:"document"`
	Reason   string `json:"reason"`
}

// Total returns the number of documents seen
func (r BatchResult) Total() int {
	return r.Processed + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}
