package domain

import "context"

// ConversionService defines the document-to-PDF use case.
type ConversionService interface {
	Convert(ctx context.Context, file UploadedFile, targetFormat string) (*ConversionResult, error)
}

// TitleService defines the naming use case. GenerateTitle never fails.
type TitleService interface {
	GenerateTitle(ctx context.Context, file UploadedFile) string
	FallbackTitle() string
}

// QuizService defines the structured quiz generation use case.
type QuizService interface {
	Generate(ctx context.Context, req QuizGenerationRequest) ([]QuizQuestion, error)
	GenerateForStudySet(ctx context.Context, studySetID string, questionCount int) ([]QuizQuestion, error)
}
