package model

// MCQItem is a single parsed multiple-choice question.
type MCQItem struct {
	Number      int               `json:"number"`
	Question    string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation,omitempty"`
}

// ChunkSource describes a retrieved textbook excerpt that backed the
// generated questions.
type ChunkSource struct {
	Chapter string  `json:"chapter,omitempty"`
	Score   float32 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

// GenerateResult is the outcome of one MCQ generation request.
type GenerateResult struct {
	MCQs    string        `json:"mcqs"`
	Items   []MCQItem     `json:"items,omitempty"`
	Subject Subject       `json:"subject"`
	Chapter string        `json:"chapter"`
	Sources []ChunkSource `json:"sources,omitempty"`
	Cached  bool          `json:"cached,omitempty"`
}
