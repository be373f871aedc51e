package domain

import "context"

// CompletionRequest is a single prompt sent to a language model.
type CompletionRequest struct {
	System string
	Prompt string

	// ImageURL switches the call to the vision-capable model.
	ImageURL      string
	ImageMIMEType string

	// JSON asks the provider for a JSON object response.
	JSON        bool
	Temperature float64
	MaxTokens   int
}

// LanguageModel is the completion client shared by title and quiz generation.
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
