package models

import "fmt"

// ChunkedDocument is the stored form of an ingested document: the full text
// plus the per-page chunk lists, keyed by the document filename.
type ChunkedDocument struct {
	ID          string           `json:"id"`
	FullText    string           `json:"full_text"`
	PageChunks  map[int][]string `json:"page_chunks"`
	TotalPages  int              `json:"total_pages"`
	TotalChunks int              `json:"total_chunks"`
}

// EmbeddingVector is a fixed-dimension vector produced by the embedding model.
type EmbeddingVector struct {
	Values     []float32 `json:"values"`
	Dimensions int       `json:"dimensions"`
}

// VectorRecord is one entry in the vector index.
type VectorRecord struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// Vector kinds stored in the index.
const (
	VectorKindFull = "full"
	VectorKindPage = "page"
)

// FullVectorID returns the index id for a document's whole-text vector.
func FullVectorID(filename string) string {
	return filename + ":" + VectorKindFull
}

// PageVectorID returns the index id for one page's vector. Ids are
// deterministic; they are the only handle used to locate or delete vectors.
func PageVectorID(filename string, page int) string {
	return fmt.Sprintf("%s:%s:%d", filename, VectorKindPage, page)
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Text       string  `json:"text"`
	PageNumber int     `json:"page_number"`
	Score      float32 `json:"score"`
}

// Source records where an included chunk came from.
type Source struct {
	PageNumber int     `json:"page_number"`
	Score      float32 `json:"score"`
}

// AugmentedPromptData is the result of prompt augmentation: the original goal,
// the context that fit the budget, the final prompt, and per-chunk attribution.
type AugmentedPromptData struct {
	OriginalGoal    string   `json:"original_goal"`
	RelevantText    string   `json:"relevant_text"`
	AugmentedPrompt string   `json:"augmented_prompt"`
	Sources         []Source `json:"sources"`
}

// MCQ is one multiple-choice question generated for a page.
type MCQ struct {
	ID                 int      `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Explanation        string   `json:"explanation"`
	PageNumber         int      `json:"page_number"`
}

// QueryResult is one hit from a similarity query.
type QueryResult struct {
	ID       string            `json:"id"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}
