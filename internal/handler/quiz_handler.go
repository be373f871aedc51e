package handler

import (
	"net/http"
	"strings"

	"study-set-server/internal/domain"
	apperrors "study-set-server/pkg/errors"

	"github.com/gorilla/mux"
)

const (
	defaultQuestionCount = 5
	maxQuizBodyBytes     = 1 << 20
)

// studySetQuizRequest is the body of the study-set quiz endpoint.
type studySetQuizRequest struct {
	QuestionCount *int `json:"question_count"`
}

// quizRequest mirrors domain.QuizGenerationRequest with an optional count.
type quizRequest struct {
	Text          string `json:"text"`
	QuestionCount *int   `json:"question_count"`
}

// QuizHandler serves quiz generation.
type QuizHandler struct {
	service domain.QuizService
	logger  domain.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(service domain.QuizService, logger domain.Logger) *QuizHandler {
	return &QuizHandler{service: service, logger: logger}
}

// GenerateQuiz builds a quiz from text in the request body.
func (h *QuizHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var body quizRequest
	if err := decodeJSONBody(w, r, maxQuizBodyBytes, false, &body); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	questions, err := h.service.Generate(r.Context(), domain.QuizGenerationRequest{
		SourceText:    body.Text,
		QuestionCount: questionCountOrDefault(body.QuestionCount),
	})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.QuizResponse{Questions: questions})
}

// GenerateStudySetQuiz re-extracts a stored study set and builds a quiz from it.
// An empty body uses the default question count.
func (h *QuizHandler) GenerateStudySetQuiz(w http.ResponseWriter, r *http.Request) {
	studySetID := strings.TrimSpace(mux.Vars(r)["id"])
	if studySetID == "" {
		writeAppError(w, h.logger, apperrors.NewValidationError("Study set ID is required"))
		return
	}

	var body studySetQuizRequest
	if err := decodeJSONBody(w, r, maxQuizBodyBytes, true, &body); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	questions, err := h.service.GenerateForStudySet(r.Context(), studySetID, questionCountOrDefault(body.QuestionCount))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.QuizResponse{Questions: questions})
}

func questionCountOrDefault(count *int) int {
	if count == nil {
		return defaultQuestionCount
	}
	return *count
}
