package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrEngineUnavailable = errors.New("conversion engine unavailable")
	ErrConversionFailed  = errors.New("conversion failed")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtractionEmpty   = errors.New("insufficient extracted text")
	ErrStagingFailed     = errors.New("staging failed")
	ErrQuizValidation    = errors.New("quiz response failed validation")
	ErrModelUnavailable  = errors.New("language model unavailable")
	ErrStudySetNotFound  = errors.New("study set not found")
	ErrStoreUnavailable  = errors.New("object store not configured")
)

// QuizValidationError aggregates every constraint the model output violated.
// The whole response is rejected when this error is returned.
type QuizValidationError struct {
	RequiredCount int
	ReceivedCount int
	Failures      []string
	// InsufficientCount is set when fewer questions than RequiredCount were returned.
	InsufficientCount bool
}

func (e *QuizValidationError) Error() string {
	if len(e.Failures) == 0 {
		return ErrQuizValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrQuizValidation.Error(), strings.Join(e.Failures, "; "))
}

func (e *QuizValidationError) Unwrap() error {
	return ErrQuizValidation
}
