package models

const (
	// OptionsPerQuestion is the fixed option count for every MCQ.
	OptionsPerQuestion = 4

	// Metadata keys attached to every vector record.
	MetadataFilename  = "filename"
	MetadataPage      = "page_number"
	MetadataKind      = "kind"
	MetadataTimestamp = "timestamp"
)

var (
	AugmentPreamble = "Context information from the document:"

	SystemPromptTemplate = "You are a helpful teaching assistant. Use the provided document context to answer accurately."

	TranscriptGoalTemplate = "Summarize this text in %d sentences, keeping the key facts and terminology."

	McqGoalTemplate = `Produce %d multiple-choice questions about the text as a JSON array. Each element must have the shape {"question": string, "options": [4 strings], "correct_option_index": int, "explanation": string}. Answer with the JSON array only.`
)
