package types

// HeadingLevel is the structural level assigned to a span
type HeadingLevel string

// Heading levels H1 to H4. LevelNone marks body text; the document title is
// carried separately in Outline.Title.
const (
	LevelNone HeadingLevel = ""
	LevelH1   HeadingLevel = "H1"
	LevelH2   HeadingLevel = "H2"
	LevelH3   HeadingLevel = "H3"
	LevelH4   HeadingLevel = "H4"
)

// OutlineLevels lists the levels that may appear in an outline, in rank order
var OutlineLevels = []HeadingLevel{LevelH1, LevelH2, LevelH3, LevelH4}

// IsHeading reports whether the level is one of H1..H4
func (l HeadingLevel) IsHeading() bool {
	switch l {
	case LevelH1, LevelH2, LevelH3, LevelH4:
		return true
	}
	return false
}

// Depth returns 1 for H1 through 4 for H4, and 0 for anything else
func (l HeadingLevel) Depth() int {
	for i, lv := range OutlineLevels {
		if lv == l {
			return i + 1
		}
	}
	return 0
}

// HeadingCandidate is a span annotated with its classified level
type HeadingCandidate struct {
	Span  Span         `json:"span"`
	Level HeadingLevel `json:"level"`
}

// LevelSize maps one heading level to the font size that produces it
type LevelSize struct {
	Level    HeadingLevel `json:"level"`
	FontSize float64      `json:"font_size"`
}

// FontProfile holds the body font size of a scope and its heading size tiers.
// Levels are ordered H1 first with strictly decreasing font sizes.
type FontProfile struct {
	BodyFontSize float64     `json:"body_font_size"`
	Levels       []LevelSize `json:"levels"`
}

// Empty reports whether the profile was built from no font data
func (p FontProfile) Empty() bool {
	return p.BodyFontSize == 0 && len(p.Levels) == 0
}
