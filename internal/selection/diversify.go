package selection

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Config holds the diversity caps
type Config struct {
	PerDocumentCap           int
	MaxSections              int
	SubsectionSourceCount    int
	SubsectionPerDocumentCap int
	MaxSubsections           int
}

// DefaultConfig returns 3 sections per document, 25 overall, and 20 subsections
// drawn from the top 15 sections with at most 4 per document.
func DefaultConfig() Config {
	return Config{
		PerDocumentCap:           3,
		MaxSections:              25,
		SubsectionSourceCount:    15,
		SubsectionPerDocumentCap: 4,
		MaxSubsections:           20,
	}
}

// Validate rejects caps that would make selection meaningless
func (c Config) Validate() error {
	if c.PerDocumentCap < 1 {
		return &Error{Message: "per-document cap must be at least 1"}
	}
	if c.MaxSections < 1 {
		return &Error{Message: "max sections must be at least 1"}
	}
	if c.SubsectionSourceCount < 0 || c.SubsectionPerDocumentCap < 0 || c.MaxSubsections < 0 {
		return &Error{Message: "subsection caps must be non-negative"}
	}
	return nil
}

const (
	// minTitleLen is the shortest accepted section title, exclusive
	minTitleLen = 3
	// minNearDupLen is the shorter title's length above which substring overlap counts as duplication
	minNearDupLen = 10
)

// SortByScore returns a copy sorted by score descending; ties keep discovery order
func SortByScore(scored []types.ScoredSection) []types.ScoredSection {
	sorted := make([]types.ScoredSection, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// NearDuplicate reports whether one title is a case-insensitive substring of the
// other and the shorter title is longer than 10 characters.
func NearDuplicate(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	shorter := min(utf8.RuneCountInString(la), utf8.RuneCountInString(lb))
	if shorter <= minNearDupLen {
		return false
	}
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// SelectSections walks sections by descending score and accepts each one that is
// not a near-duplicate of an accepted title, has a title longer than 3
// characters, and fits both caps. Accepted sections get 1-based ranks.
func SelectSections(scored []types.ScoredSection, cfg Config) []types.ScoredSection {
	var accepted []types.ScoredSection
	perDoc := make(map[string]int)

	for _, s := range SortByScore(scored) {
		if len(accepted) >= cfg.MaxSections {
			break
		}
		title := strings.TrimSpace(s.Title)
		if utf8.RuneCountInString(title) <= minTitleLen {
			continue
		}
		if perDoc[s.DocumentID] >= cfg.PerDocumentCap {
			continue
		}
		if duplicatesAny(title, accepted) {
			continue
		}

		s.Title = title
		s.Rank = len(accepted) + 1
		accepted = append(accepted, s)
		perDoc[s.DocumentID]++
	}

	return accepted
}

func duplicatesAny(title string, accepted []types.ScoredSection) bool {
	for _, a := range accepted {
		if NearDuplicate(title, a.Title) {
			return true
		}
	}
	return false
}
