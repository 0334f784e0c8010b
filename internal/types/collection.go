package types

// CollectionInput describes one persona-mode collection
type CollectionInput struct {
	Documents    []DocumentRef `json:"documents"`
	Persona      Persona       `json:"persona"`
	JobToBeDone  JobToBeDone   `json:"job_to_be_done"`
	Challenge    *ChallengeRef `json:"challenge_info,omitempty"`
	InputPath    string        `json:"-"`
	DocumentsDir string        `json:"-"`
}

// DocumentRef names one PDF of a collection
type DocumentRef struct {
	Filename string `json:"filename"`
	Title    string `json:"title,omitempty"`
}

// Persona is the stated role of the reader
type Persona struct {
	Role string `json:"role"`
}

// JobToBeDone is the task the reader wants to accomplish
type JobToBeDone struct {
	Task string `json:"task"`
}

// ChallengeRef carries optional identifying metadata from the input file
type ChallengeRef struct {
	ChallengeID  string `json:"challenge_id,omitempty"`
	TestCaseName string `json:"test_case_name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// CollectionOutput is the persona-mode result for one collection
type CollectionOutput struct {
	Metadata           CollectionMetadata   `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// CollectionMetadata records what a collection run was asked to do
type CollectionMetadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked section in the collection output
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis is one refined excerpt in the collection output
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}
