package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"study-set-server/internal/domain"
	"study-set-server/internal/service"
)

type mockConversionService struct {
	result     *domain.ConversionResult
	err        error
	lastFile   domain.UploadedFile
	lastTarget string
	calls      int
}

func (m *mockConversionService) Convert(ctx context.Context, file domain.UploadedFile, targetFormat string) (*domain.ConversionResult, error) {
	m.calls++
	m.lastFile = file
	m.lastTarget = targetFormat
	return m.result, m.err
}

type mockTitleService struct {
	title    string
	fallback string
	lastFile domain.UploadedFile
	calls    int
}

func (m *mockTitleService) GenerateTitle(ctx context.Context, file domain.UploadedFile) string {
	m.calls++
	m.lastFile = file
	return m.title
}

func (m *mockTitleService) FallbackTitle() string {
	return m.fallback
}

type mockQuizService struct {
	questions     []domain.QuizQuestion
	err           error
	lastRequest   domain.QuizGenerationRequest
	lastStudySet  string
	lastCount     int
	generateCalls int
	studySetCalls int
}

func (m *mockQuizService) Generate(ctx context.Context, req domain.QuizGenerationRequest) ([]domain.QuizQuestion, error) {
	m.generateCalls++
	m.lastRequest = req
	return m.questions, m.err
}

func (m *mockQuizService) GenerateForStudySet(ctx context.Context, studySetID string, questionCount int) ([]domain.QuizQuestion, error) {
	m.studySetCalls++
	m.lastStudySet = studySetID
	m.lastCount = questionCount
	return m.questions, m.err
}

// newMultipartRequest builds a POST with a "file" part and optional extra fields.
func newMultipartRequest(t *testing.T, target, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, target, &body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter(conv *mockConversionService, title *mockTitleService, quiz *mockQuizService, maxFileSize int64) http.Handler {
	logger := NewMockHandlerLogger()
	stats := func() service.CleanupStats {
		return service.CleanupStats{Enqueued: 3, Succeeded: 2, Failed: 1}
	}
	handlers := Handlers{
		Conversion:   NewConversionHandler(conv, maxFileSize, logger),
		Title:        NewTitleHandler(title, maxFileSize, logger),
		Quiz:         NewQuizHandler(quiz, logger),
		CleanupStats: stats,
	}
	return newRouter(handlers, []string{"http://localhost:5173"}, logger)
}
