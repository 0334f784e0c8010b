package ranking

import (
	"fmt"
	"strings"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Score computes the importance score of one section for a persona
func Score(section types.Section, profile *types.PersonaProfile) types.ScoredSection {
	b := scoreBreakdown(section, profile)
	return types.ScoredSection{
		Section: section,
		Score:   b.total(),
		Notes:   generateNotes(b),
	}
}

// ScoreSections scores every section, preserving input order. Sorting and
// selection happen later, once all documents have been scored.
func ScoreSections(sections []types.Section, profile *types.PersonaProfile) []types.ScoredSection {
	scored := make([]types.ScoredSection, 0, len(sections))
	for _, s := range sections {
		scored = append(scored, Score(s, profile))
	}
	return scored
}

func scoreBreakdown(section types.Section, profile *types.PersonaProfile) breakdown {
	title := strings.ToLower(section.Title)
	content := strings.ToLower(section.Content)

	var b breakdown
	if profile != nil {
		computeKeywordScores(title, content, profile, &b)
		computeTermBonuses(title, content, profile.TermBonuses, &b)
	}
	b.length = computeLengthBonus(section.Content)
	b.position = computePositionBonus(section.StartPage)
	b.level = computeLevelBonus(section.Level)
	return b
}

// generateNotes creates a brief explanation of the score.
func generateNotes(b breakdown) string {
	var parts []string

	if len(b.matchedHigh) > 0 {
		parts = append(parts, fmt.Sprintf("High keywords %.1f (%s)", b.high, strings.Join(b.matchedHigh, ", ")))
	} else {
		parts = append(parts, "No high keywords")
	}

	if len(b.matchedMedium) > 0 {
		parts = append(parts, fmt.Sprintf("Task keywords %.1f (%s)", b.medium, strings.Join(b.matchedMedium, ", ")))
	}

	if len(b.matchedTerms) > 0 {
		parts = append(parts, fmt.Sprintf("Domain terms %.1f (%s)", b.terms, strings.Join(b.matchedTerms, ", ")))
	}

	parts = append(parts, fmt.Sprintf("Structure %.2f (length %.2f, position %.2f, level %.1f)",
		b.length+b.position+b.level, b.length, b.position, b.level))

	return strings.Join(parts, ". ")
}
