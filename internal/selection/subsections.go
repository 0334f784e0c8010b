package selection

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outline-ranker/internal/types"
)

const (
	minSourceContentLen = 100
	maxChunkLen         = 400
	minExcerptLen       = 50
	maxExcerptLen       = 600
)

var (
	listMarkerPattern = regexp.MustCompile(`[•▪◦]|(?:^|\s)\d+\.\s`)
	sentenceEnd       = regexp.MustCompile(`[.!?]+`)
)

// ExtractSubsections chunks the top-scored sections into excerpts. It reads the
// top SubsectionSourceCount sections before deduplication, skips documents that
// reached the per-document cap and sections with little content, and keeps only
// chunks inside the useful excerpt window.
func ExtractSubsections(scored []types.ScoredSection, cfg Config) []types.Subsection {
	sorted := SortByScore(scored)
	if len(sorted) > cfg.SubsectionSourceCount {
		sorted = sorted[:cfg.SubsectionSourceCount]
	}

	var out []types.Subsection
	coverage := make(map[string]int)

	for _, s := range sorted {
		if len(out) >= cfg.MaxSubsections {
			break
		}
		if coverage[s.DocumentID] >= cfg.SubsectionPerDocumentCap {
			continue
		}
		content := strings.TrimSpace(s.Content)
		if utf8.RuneCountInString(content) < minSourceContentLen {
			continue
		}

		for _, chunk := range Chunk(content) {
			if len(out) >= cfg.MaxSubsections || coverage[s.DocumentID] >= cfg.SubsectionPerDocumentCap {
				break
			}
			n := utf8.RuneCountInString(chunk)
			if n <= minExcerptLen || n >= maxExcerptLen {
				continue
			}
			out = append(out, types.Subsection{
				DocumentID:  s.DocumentID,
				Page:        s.StartPage,
				RefinedText: chunk,
			})
			coverage[s.DocumentID]++
		}
	}

	return out
}

// Chunk splits content on list markers when it has any, and otherwise groups
// sentences into chunks shorter than 400 characters.
func Chunk(content string) []string {
	if listMarkerPattern.MatchString(content) {
		var chunks []string
		for _, part := range listMarkerPattern.Split(content, -1) {
			if part = strings.TrimSpace(part); part != "" {
				chunks = append(chunks, part)
			}
		}
		return chunks
	}

	var chunks []string
	var cur strings.Builder
	for _, sentence := range sentenceEnd.Split(content, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if utf8.RuneCountInString(cur.String())+utf8.RuneCountInString(sentence) < maxChunkLen {
			cur.WriteString(sentence)
			cur.WriteString(". ")
			continue
		}
		if c := strings.TrimSpace(cur.String()); c != "" {
			chunks = append(chunks, c)
		}
		cur.Reset()
		cur.WriteString(sentence)
		cur.WriteString(". ")
	}
	if c := strings.TrimSpace(cur.String()); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}
