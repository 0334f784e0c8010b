// Package normalize cleans raw page spans before classification.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/outline-ranker/internal/types"
)

// DefaultMargin is the height of the header and footer bands in layout units
const DefaultMargin = 50.0

// Config holds normalizer settings
type Config struct {
	Margin float64
}

// DefaultConfig returns the default normalizer settings
func DefaultConfig() Config {
	return Config{Margin: DefaultMargin}
}

// InBand reports whether a span starting at y0 lies in the header or footer band of a page
func InBand(y0, pageHeight, margin float64) bool {
	return y0 <= margin || y0 >= pageHeight-margin
}

// Page returns the page's body spans in reading order. Line aggregates
// (SpanCount, AvgSpanWidth) are computed over the raw line before any span is
// dropped, then attached to every surviving member span.
func Page(page types.Page, cfg Config) []types.Span {
	var out []types.Span
	for _, line := range page.Lines {
		count := line.SpanCount()
		if count == 0 {
			continue
		}
		avgWidth := line.AvgSpanWidth()

		for _, span := range line.Spans {
			if InBand(span.BBox.Y0, page.Height, cfg.Margin) {
				continue
			}
			text := CleanText(span.Text)
			if text == "" {
				continue
			}
			span.Text = text
			span.Page = page.Number
			span.SpanCount = count
			span.AvgSpanWidth = avgWidth
			out = append(out, span)
		}
	}
	return out
}

// Document normalizes every page and returns spans grouped per page, in page order
func Document(doc *types.Document, cfg Config) [][]types.Span {
	pages := make([][]types.Span, 0, len(doc.Pages))
	for _, p := range doc.Pages {
		pages = append(pages, Page(p, cfg))
	}
	return pages
}

// CleanText applies NFKC normalization, trims, and collapses internal whitespace runs
func CleanText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
