// Package sections groups classified spans into titled sections of body text.
package sections

import (
	"path/filepath"
	"strings"

	"github.com/jonathan/outline-ranker/internal/heading"
	"github.com/jonathan/outline-ranker/internal/types"
)

// IntroductionPrefix titles the implicit section that holds text before the first heading
const IntroductionPrefix = "Introduction – "

// Segmenter walks a document's spans and opens a section at every heading
type Segmenter struct {
	classifier *heading.Classifier
	recall     *Recall
}

// NewSegmenter creates a strict segmenter that opens sections only on classifier hits
func NewSegmenter(classifier *heading.Classifier) *Segmenter {
	return &Segmenter{classifier: classifier}
}

// WithRecall returns a copy that also opens sections on the recall rules
func (s *Segmenter) WithRecall(r *Recall) *Segmenter {
	return &Segmenter{classifier: s.classifier, recall: r}
}

// IntroductionTitle names the implicit first section of a document
func IntroductionTitle(documentID string) string {
	name := filepath.Base(documentID)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".pdf") {
		name = strings.TrimSuffix(name, ext)
	}
	return IntroductionPrefix + name
}

// Segment splits the pages of one document into sections. profiles is parallel
// to pages. Every span's text lands in exactly one section title or content.
func (s *Segmenter) Segment(documentID string, pages [][]types.Span, profiles []types.FontProfile, title string) []types.Section {
	var out []types.Section
	var cur *types.Section
	var content []string

	flush := func() {
		if cur == nil {
			return
		}
		cur.Content = strings.Join(content, " ")
		out = append(out, *cur)
		cur = nil
		content = nil
	}

	for i, spans := range pages {
		var profile types.FontProfile
		if i < len(profiles) {
			profile = profiles[i]
		}

		for _, span := range spans {
			text := strings.TrimSpace(span.Text)
			if text == "" {
				continue
			}

			level := s.headingLevel(span, profile, title)
			if level != types.LevelNone {
				flush()
				cur = &types.Section{
					DocumentID: documentID,
					Title:      text,
					StartPage:  span.Page,
					FontSize:   span.FontSize,
					Level:      level,
				}
				continue
			}

			if cur == nil {
				cur = &types.Section{
					DocumentID: documentID,
					Title:      IntroductionTitle(documentID),
					StartPage:  span.Page,
					FontSize:   span.FontSize,
					Level:      types.LevelH1,
				}
			}
			content = append(content, text)
		}
	}
	flush()

	return out
}

func (s *Segmenter) headingLevel(span types.Span, profile types.FontProfile, title string) types.HeadingLevel {
	if heading.IsTitleFragment(span, title) {
		return types.LevelNone
	}
	if level := s.classifier.Classify(span, profile); level != types.LevelNone {
		return level
	}
	if s.recall != nil {
		return s.recall.Level(span.Text)
	}
	return types.LevelNone
}
