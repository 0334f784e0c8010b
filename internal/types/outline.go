package types

// Outline is the single-document output: a title and its flat heading list
type Outline struct {
	Title   string         `json:"title"`
	Outline []OutlineEntry `json:"outline"`
}

// OutlineEntry is one heading in an outline
type OutlineEntry struct {
	Level HeadingLevel `json:"level"`
	Text  string       `json:"text"`
	Page  int          `json:"page"`
}
