// Package ranking scores document sections against a persona keyword profile.
package ranking

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Weights for keyword occurrences
const (
	highTitleWeight   = 5.0
	highContentWeight = 3.0
	mediumWeight      = 2.0
)

// Structural bonus constants
const (
	lengthBonusDivisor = 300.0
	maxLengthBonus     = 3.0
	positionBonusBase  = 3.0
	positionBonusStep  = 0.2
	// termBonusWindow is how far into the content a family term still earns half its bonus
	termBonusWindow = 500
)

var levelBonuses = map[types.HeadingLevel]float64{
	types.LevelH1: 2.0,
	types.LevelH2: 1.5,
	types.LevelH3: 1.0,
	types.LevelH4: 0.5,
}

// breakdown is the per-component score of one section
type breakdown struct {
	high, medium  float64
	length        float64
	position      float64
	level         float64
	terms         float64
	matchedHigh   []string
	matchedMedium []string
	matchedTerms  []string
}

func (b breakdown) total() float64 {
	return b.high + b.medium + b.length + b.position + b.level + b.terms
}

// computeKeywordScores counts raw, non-overlapping occurrences of each keyword
func computeKeywordScores(title, content string, profile *types.PersonaProfile, b *breakdown) {
	for _, kw := range profile.High {
		inTitle := strings.Count(title, kw)
		inContent := strings.Count(content, kw)
		if inTitle+inContent == 0 {
			continue
		}
		b.high += highTitleWeight*float64(inTitle) + highContentWeight*float64(inContent)
		b.matchedHigh = append(b.matchedHigh, kw)
	}

	combined := title + " " + content
	for _, kw := range profile.Medium {
		n := strings.Count(combined, kw)
		if n == 0 {
			continue
		}
		b.medium += mediumWeight * float64(n)
		b.matchedMedium = append(b.matchedMedium, kw)
	}
}

// computeLengthBonus rewards substantive sections up to a cap
func computeLengthBonus(content string) float64 {
	return math.Min(float64(utf8.RuneCountInString(content))/lengthBonusDivisor, maxLengthBonus)
}

// computePositionBonus favors sections that start early in their document
func computePositionBonus(page int) float64 {
	return math.Max(0, positionBonusBase-float64(page)*positionBonusStep)
}

func computeLevelBonus(level types.HeadingLevel) float64 {
	return levelBonuses[level]
}

// computeTermBonuses adds a family term's full bonus when it appears in the title,
// or half of it when it appears in the lead of the content.
func computeTermBonuses(title, content string, bonuses map[string]float64, b *breakdown) {
	if len(bonuses) == 0 {
		return
	}
	terms := make([]string, 0, len(bonuses))
	for term := range bonuses {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	lead := leadWindow(content, termBonusWindow)
	for _, term := range terms {
		switch {
		case strings.Contains(title, term):
			b.terms += bonuses[term]
		case strings.Contains(lead, term):
			b.terms += bonuses[term] * 0.5
		default:
			continue
		}
		b.matchedTerms = append(b.matchedTerms, term)
	}
}

func leadWindow(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
