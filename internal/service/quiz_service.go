package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"study-set-server/internal/domain"
	apperrors "study-set-server/pkg/errors"
	"study-set-server/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	quizPromptTextLimit = 12000
	maxQuestionCount    = 50
)

const quizSystemPrompt = `You write multiple-choice quizzes from study material.
Respond with a single JSON object of the form:
{"questions": [{"question": string, "options": [string], "answer": string, "category": string, "explanation": string or null, "related_material": string or null}]}
Each question must have distinct options and the answer must be exactly one of the options.
Category is a short topic label. Do not add any text outside the JSON object.`

// QuizService generates quizzes and validates the model output before returning it
type QuizService struct {
	model     domain.LanguageModel
	validator *QuizValidator
	ingestion *IngestionService
	repo      domain.StudySetRepository
	store     domain.ObjectStore
	bucket    string
	logger    domain.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(
	model domain.LanguageModel,
	validator *QuizValidator,
	ingestion *IngestionService,
	repo domain.StudySetRepository,
	store domain.ObjectStore,
	bucket string,
	logger domain.Logger,
) *QuizService {
	return &QuizService{
		model:     model,
		validator: validator,
		ingestion: ingestion,
		repo:      repo,
		store:     store,
		bucket:    bucket,
		logger:    logger,
	}
}

// Generate asks the model for at least req.QuestionCount questions.
// A schema failure is a quiz_validation error; a transport failure is model_unavailable.
func (s *QuizService) Generate(ctx context.Context, req domain.QuizGenerationRequest) (questions []domain.QuizQuestion, err error) {
	ctx, span := observability.TraceFunction(ctx, "quiz", "generate", attribute.Int("question_count", req.QuestionCount))
	defer observability.FinishSpan(span, &err)

	if req.QuestionCount < 1 || req.QuestionCount > maxQuestionCount {
		return nil, apperrors.NewValidationError(
			"question_count is out of range",
			fmt.Sprintf("question_count must be between 1 and %d", maxQuestionCount),
		)
	}

	text := strings.TrimSpace(req.SourceText)
	if utf8.RuneCountInString(text) < MinExtractedTextLength {
		return nil, apperrors.NewInsufficientTextError(
			fmt.Sprintf("source material must contain at least %d characters of text", MinExtractedTextLength),
			domain.ErrExtractionEmpty,
		)
	}

	raw, err := s.model.Complete(ctx, domain.CompletionRequest{
		System:      quizSystemPrompt,
		Prompt:      fmt.Sprintf("Write at least %d questions based on this material:\n\n%s", req.QuestionCount, truncateRunes(text, quizPromptTextLimit)),
		JSON:        true,
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Error("Quiz model call failed", err, "question_count", req.QuestionCount)
		return nil, apperrors.NewModelUnavailableError("language model request failed", modelCause(err))
	}

	questions, err = s.validator.Validate(raw, req.QuestionCount)
	if err != nil {
		var vErr *domain.QuizValidationError
		if errors.As(err, &vErr) {
			s.logger.Warn("Quiz response failed validation",
				"required", vErr.RequiredCount,
				"received", vErr.ReceivedCount,
				"insufficient_count", vErr.InsufficientCount,
				"failures", len(vErr.Failures),
			)
		}
		appErr := apperrors.NewQuizValidationError("generated quiz did not meet the requested shape", err)
		appErr.Details = err.Error()
		return nil, appErr
	}

	s.logger.Info("Quiz generated", "requested", req.QuestionCount, "returned", len(questions))
	return questions, nil
}

// GenerateForStudySet re-extracts a study set's stored source file and generates a quiz from it.
func (s *QuizService) GenerateForStudySet(ctx context.Context, studySetID string, questionCount int) ([]domain.QuizQuestion, error) {
	if strings.TrimSpace(studySetID) == "" {
		return nil, apperrors.NewValidationError("study set id is required")
	}

	source, err := s.repo.GetSourceFile(ctx, studySetID)
	if err != nil {
		if errors.Is(err, domain.ErrStudySetNotFound) {
			return nil, apperrors.NewNotFoundError("study set not found", err)
		}
		return nil, apperrors.NewNetworkError("failed to load study set", err)
	}
	if strings.TrimSpace(source.FilePath) == "" {
		return nil, apperrors.NewNotFoundError("study set has no source file", domain.ErrStudySetNotFound)
	}

	data, err := s.store.Download(ctx, s.bucket, source.FilePath)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to download study set source file", err)
	}

	filename := source.FileName
	if filename == "" {
		filename = path.Base(source.FilePath)
	}
	text := s.ingestion.ExtractText(ctx, domain.UploadedFile{
		Data:     data,
		MimeType: source.FileType,
		Filename: filename,
	})

	s.logger.Debug("Study set source re-extracted", "study_set_id", studySetID, "chars", len(text))
	return s.Generate(ctx, domain.QuizGenerationRequest{SourceText: text, QuestionCount: questionCount})
}

func modelCause(err error) error {
	if errors.Is(err, domain.ErrModelUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
}
