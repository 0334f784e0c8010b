// Package heading classifies normalized spans into outline levels.
//
// Decision order per span: structural rejection filters, numeric and colon
// patterns, then the font-size tier of the applicable profile. Patterns always
// win over font tiers.
package heading

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/outline-ranker/internal/fontprofile"
	"github.com/jonathan/outline-ranker/internal/types"
)

// Config holds the structural rejection thresholds
type Config struct {
	MinLength       int
	MaxProseWords   int
	MaxSpansOnLine  int
	MinAvgSpanWidth float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinLength:       3,
		MaxProseWords:   10,
		MaxSpansOnLine:  6,
		MinAvgSpanWidth: 40,
	}
}

const maxColonHeadingWords = 8

var (
	h3Pattern = regexp.MustCompile(`^\d+\.\d+\.\d+\s`)
	h2Pattern = regexp.MustCompile(`^\d+\.\d+\s`)
	h1Pattern = regexp.MustCompile(`^\d+\s`)
)

// PatternLevel returns the level implied by the text alone, or LevelNone
func PatternLevel(text string) types.HeadingLevel {
	switch {
	case h3Pattern.MatchString(text):
		return types.LevelH3
	case h2Pattern.MatchString(text):
		return types.LevelH2
	case h1Pattern.MatchString(text):
		return types.LevelH1
	case isColonHeading(text):
		return types.LevelH4
	}
	return types.LevelNone
}

func isColonHeading(text string) bool {
	if !strings.HasSuffix(text, ":") || len(strings.Fields(text)) > maxColonHeadingWords {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text)
	return !unicode.IsLower(first)
}

// Classifier assigns heading levels
type Classifier struct {
	cfg Config
}

// New creates a Classifier
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Rejected reports whether the structural filters rule the span out as a heading
func (c *Classifier) Rejected(span types.Span, profile types.FontProfile) bool {
	text := strings.TrimSpace(span.Text)
	if utf8.RuneCountInString(text) < c.cfg.MinLength {
		return true
	}
	if len(strings.Fields(text)) > c.cfg.MaxProseWords && !strings.HasSuffix(text, ":") {
		return true
	}
	if span.SpanCount > c.cfg.MaxSpansOnLine {
		return true
	}
	// Aggregates are only present on normalized spans
	if span.SpanCount > 0 && span.AvgSpanWidth < c.cfg.MinAvgSpanWidth {
		return true
	}
	return fontprofile.RoundSize(span.FontSize) <= profile.BodyFontSize
}

// Classify returns the span's heading level under the given profile
func (c *Classifier) Classify(span types.Span, profile types.FontProfile) types.HeadingLevel {
	if c.Rejected(span, profile) {
		return types.LevelNone
	}
	text := strings.TrimSpace(span.Text)
	if level := PatternLevel(text); level != types.LevelNone {
		return level
	}
	return fontprofile.LevelFor(profile, span.FontSize)
}

// IsTitleFragment reports whether a page-1 span only repeats the extracted title
func IsTitleFragment(span types.Span, title string) bool {
	if span.Page != 1 || title == "" {
		return false
	}
	return strings.Contains(title, strings.TrimSpace(span.Text))
}

// Detect classifies every span of every page. profiles is parallel to pages.
// Title fragments on page 1 are dropped.
func (c *Classifier) Detect(pages [][]types.Span, profiles []types.FontProfile, title string) []types.HeadingCandidate {
	var out []types.HeadingCandidate
	for i, spans := range pages {
		var profile types.FontProfile
		if i < len(profiles) {
			profile = profiles[i]
		}
		for _, span := range spans {
			level := c.Classify(span, profile)
			if level == types.LevelNone || IsTitleFragment(span, title) {
				continue
			}
			out = append(out, types.HeadingCandidate{Span: span, Level: level})
		}
	}
	return out
}

// Outline flattens detected headings into outline entries
func (c *Classifier) Outline(pages [][]types.Span, profiles []types.FontProfile, title string) []types.OutlineEntry {
	candidates := c.Detect(pages, profiles, title)
	entries := make([]types.OutlineEntry, 0, len(candidates))
	for _, hc := range candidates {
		entries = append(entries, types.OutlineEntry{
			Level: hc.Level,
			Text:  strings.TrimSpace(hc.Span.Text),
			Page:  hc.Span.Page,
		})
	}
	return entries
}
