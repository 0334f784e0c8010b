package types

// Section is the contiguous content between one heading and the next
type Section struct {
	DocumentID string       `json:"document"`
	Title      string       `json:"section_title"`
	StartPage  int          `json:"page_number"`
	FontSize   float64      `json:"font_size"`
	Level      HeadingLevel `json:"level"`
	Content    string       `json:"content"`
}

// ScoredSection is a section with its importance score and, once selected, its 1-based rank
type ScoredSection struct {
	Section
	Score float64 `json:"importance_score"`
	Rank  int     `json:"importance_rank,omitempty"`
	Notes string  `json:"notes,omitempty"`
}

// Subsection is a bounded-length excerpt of a top-ranked section
type Subsection struct {
	DocumentID  string `json:"document"`
	Page        int    `json:"page_number"`
	RefinedText string `json:"refined_text"`
}

// PersonaProfile is the weighted keyword set derived once per collection
type PersonaProfile struct {
	Role         string             `json:"role"`
	Task         string             `json:"task"`
	Family       string             `json:"family,omitempty"`
	High         []string           `json:"high"`
	Medium       []string           `json:"medium"`
	TermBonuses  map[string]float64 `json:"term_bonuses,omitempty"`
	HeadingTerms []string           `json:"heading_terms,omitempty"`
}
