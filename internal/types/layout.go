// Package types provides type definitions for structured data used throughout the outline-ranker system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// BBox is a rectangle in page layout units. Y grows downward from the top of the page.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Span is the smallest unit of styled text on a rendered page.
// SpanCount and AvgSpanWidth are line aggregates attached during normalization.
type Span struct {
	Text         string  `json:"text"`
	BBox         BBox    `json:"bbox"`
	FontSize     float64 `json:"font_size"`
	Bold         bool    `json:"bold"`
	Page         int     `json:"page"`
	SpanCount    int     `json:"span_count,omitempty"`
	AvgSpanWidth float64 `json:"avg_span_width,omitempty"`
}

// Line is an ordered set of spans sharing a visual line
type Line struct {
	Page  int    `json:"page"`
	Spans []Span `json:"spans"`
}

// SpanCount returns the number of spans with non-blank text
func (l Line) SpanCount() int {
	n := 0
	for _, s := range l.Spans {
		if !isBlank(s.Text) {
			n++
		}
	}
	return n
}

// AvgSpanWidth returns the total width of all spans divided by the non-blank span count.
// Returns 0 when the line has no non-blank spans.
func (l Line) AvgSpanWidth() float64 {
	n := l.SpanCount()
	if n == 0 {
		return 0
	}
	total := 0.0
	for _, s := range l.Spans {
		total += s.BBox.Width()
	}
	return total / float64(n)
}

// AggregateFontSize returns the largest font size on the line
func (l Line) AggregateFontSize() float64 {
	size := 0.0
	for _, s := range l.Spans {
		if s.FontSize > size {
			size = s.FontSize
		}
	}
	return size
}

// Page is one rendered page: its 1-based number, dimensions, and lines in reading order
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Lines  []Line  `json:"lines"`
}

// Document is the span supplier's view of one source file
type Document struct {
	ID            string `json:"id"`
	MetadataTitle string `json:"metadata_title,omitempty"`
	Pages         []Page `json:"pages"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
