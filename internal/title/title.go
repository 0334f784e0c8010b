// Package title extracts a document title from the first page's spans.
package title

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Config holds candidate thresholds
type Config struct {
	MinWidth      float64
	MinFontSize   float64
	SizeTolerance float64
}

// DefaultConfig returns width ≥ 100, size ≥ 10, and a 1-unit size tolerance
func DefaultConfig() Config {
	return Config{MinWidth: 100, MinFontSize: 10, SizeTolerance: 1}
}

const (
	maxPunctuationRatio = 0.6
	maxCapsWords        = 5
)

// fillerPattern matches decorative runs: three or more characters that are not
// Latin letters, digits, Arabic, Devanagari, or CJK.
var fillerPattern = regexp.MustCompile(`^[^A-Za-z0-9\x{0600}-\x{06FF}\x{0900}-\x{097F}\x{4e00}-\x{9fff}]{3,}$`)

var domainMarkers = []string{"www.", ".com", ".org", ".net"}

// IsCandidate reports whether a span may contribute to the title
func IsCandidate(span types.Span, cfg Config) bool {
	text := strings.TrimSpace(span.Text)
	if text == "" {
		return false
	}
	if !hasLetter(text) {
		return false
	}
	if punctuationRatio(text) > maxPunctuationRatio {
		return false
	}
	if fillerPattern.MatchString(text) {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range domainMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if isUpper(text) && len(strings.Fields(text)) <= maxCapsWords {
		return false
	}
	return span.BBox.Width() >= cfg.MinWidth && span.FontSize >= cfg.MinFontSize
}

// Extract returns the title built from page-1 spans, or "" when none qualify.
// Spans from other pages are ignored.
func Extract(spans []types.Span, cfg Config) string {
	var candidates []types.Span
	for _, s := range spans {
		if s.Page == 1 && IsCandidate(s, cfg) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	maxSize := math.Inf(-1)
	for _, c := range candidates {
		maxSize = math.Max(maxSize, c.FontSize)
	}

	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.FontSize >= maxSize-cfg.SizeTolerance {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].BBox.Y0 < kept[j].BBox.Y0 })

	seen := make(map[string]bool)
	parts := make([]string, 0, len(kept))
	for _, c := range kept {
		text := strings.TrimSpace(c.Text)
		if seen[text] {
			continue
		}
		seen[text] = true
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// punctuationRatio counts ASCII punctuation against the rune length
func punctuationRatio(s string) float64 {
	total, punct := 0, 0
	for _, r := range s {
		total++
		if (r < unicode.MaxASCII && unicode.IsPunct(r)) || strings.ContainsRune("$+<=>^`|~", r) {
			punct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(punct) / float64(total)
}

// isUpper reports whether s has at least one cased letter and no lowercase letters
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
