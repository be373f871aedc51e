package domain

// QuizQuestion is a single generated multiple-choice question.
//
// Answer is only checked for presence. It is not required to be one of Options.
type QuizQuestion struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	Answer          string   `json:"answer"`
	Category        string   `json:"category"`
	Explanation     *string  `json:"explanation,omitempty"`
	RelatedMaterial *string  `json:"related_material"`
}

// QuizGenerationRequest carries the source text and the minimum number of
// questions the model output must contain to be accepted.
type QuizGenerationRequest struct {
	SourceText    string `json:"text"`
	QuestionCount int    `json:"question_count"`
}

// QuizResponse is the payload returned by the quiz endpoints.
type QuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}
