package sections

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/outline-ranker/internal/heading"
	"github.com/jonathan/outline-ranker/internal/types"
)

// Recall holds the looser heading rules used when ranking sections for a persona.
// They trade precision for recall and never feed the single-document outline.
type Recall struct {
	// HeadingTerms are lower-case domain terms that mark a line as a heading
	HeadingTerms []string
}

var (
	titleCasePattern = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+`)
	headingPrefixes  = []string{"Chapter", "Section", "Part", "Guide to", "Introduction to"}
)

const (
	minRecallTitleLen  = 4
	maxCapsLineLen     = 100
	maxCapsLineWords   = 10
	maxTitleCaseWords  = 6
	maxColonLineLen    = 150
	minTermHeadingLen  = 11
	maxTermHeadingLen  = 199
	defaultRecallLevel = types.LevelH3
)

// Level returns the recall heading level of a line, or LevelNone.
// A numeric pattern decides the level when present; otherwise recall headings are H3.
func (r *Recall) Level(text string) types.HeadingLevel {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	if n < minRecallTitleLen {
		return types.LevelNone
	}
	if !r.matches(text, n) {
		return types.LevelNone
	}
	if level := heading.PatternLevel(text); level != types.LevelNone {
		return level
	}
	return defaultRecallLevel
}

func (r *Recall) matches(text string, n int) bool {
	words := len(strings.Fields(text))

	if n < maxCapsLineLen && words <= maxCapsLineWords && isAllCaps(text) {
		return true
	}
	if words <= maxTitleCaseWords && titleCasePattern.MatchString(text) {
		return true
	}
	if n < maxColonLineLen && strings.HasSuffix(text, ":") {
		return true
	}
	for _, prefix := range headingPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	if n >= minTermHeadingLen && n <= maxTermHeadingLen {
		lower := strings.ToLower(text)
		for _, term := range r.HeadingTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

func isAllCaps(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
