package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"study-set-server/internal/domain"
	apperrors "study-set-server/pkg/errors"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	writeError(rr, http.StatusTeapot, `say "nope"`)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content type application/json, got %s", ct)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"say \"nope\""}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestWriteAppError_EngineUnavailableCarriesGuidance(t *testing.T) {
	rr := httptest.NewRecorder()
	err := apperrors.NewEngineUnavailableError("LibreOffice is not installed", domain.LibreOfficeInstallGuidance(), domain.ErrEngineUnavailable)

	writeAppError(rr, NewMockHandlerLogger(), err)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Type != "engine_unavailable" {
		t.Fatalf("expected engine_unavailable, got %q", body.Type)
	}
	if body.Guidance["macos"] == "" || body.Guidance["debian_ubuntu"] == "" {
		t.Fatalf("expected install guidance, got %v", body.Guidance)
	}
	if body.Retryable {
		t.Fatal("engine_unavailable should not be retryable")
	}
}

func TestWriteAppError_QuizValidationIsRetryable(t *testing.T) {
	rr := httptest.NewRecorder()
	cause := &domain.QuizValidationError{RequiredCount: 5, ReceivedCount: 3, InsufficientCount: true}

	writeAppError(rr, NewMockHandlerLogger(), apperrors.NewQuizValidationError("Model output failed validation", cause))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"retryable":true`) {
		t.Fatalf("expected retryable flag, got %s", rr.Body.String())
	}
}

func TestWriteAppError_UntypedErrorIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	writeAppError(rr, NewMockHandlerLogger(), errors.New("secret driver detail"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret") {
		t.Fatalf("internal cause leaked: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"type":"internal"`) {
		t.Fatalf("expected internal error type, got %s", rr.Body.String())
	}
}

func TestReadUpload(t *testing.T) {
	t.Run("reads file and sanitizes name", func(t *testing.T) {
		req := newMultipartRequest(t, "/upload", "../../etc/notes.txt", "text/plain", []byte("hello"), nil)
		file, err := readUpload(httptest.NewRecorder(), req, 1024)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if file.Filename != "notes.txt" {
			t.Fatalf("expected sanitized filename, got %q", file.Filename)
		}
		if file.MimeType != "text/plain" || string(file.Data) != "hello" {
			t.Fatalf("unexpected upload: %+v", file)
		}
	})

	t.Run("sniffs missing content type", func(t *testing.T) {
		req := newMultipartRequest(t, "/upload", "scan.pdf", "", []byte("%PDF-1.4\n"), nil)
		file, err := readUpload(httptest.NewRecorder(), req, 1024)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if file.MimeType != "application/pdf" {
			t.Fatalf("expected sniffed application/pdf, got %q", file.MimeType)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req := newMultipartRequest(t, "/upload", "", "", nil, map[string]string{"other": "x"})
		_, err := readUpload(httptest.NewRecorder(), req, 1024)
		if apperrors.GetStatusCode(err) != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		req := newMultipartRequest(t, "/upload", "empty.txt", "text/plain", nil, nil)
		_, err := readUpload(httptest.NewRecorder(), req, 1024)
		if apperrors.GetStatusCode(err) != http.StatusBadRequest {
			t.Fatalf("expected 400, got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		req := newMultipartRequest(t, "/upload", "big.txt", "text/plain", bytes200(), nil)
		_, err := readUpload(httptest.NewRecorder(), req, 100)
		appErr, ok := apperrors.As(err)
		if !ok || appErr.StatusCode != http.StatusBadRequest || appErr.Message != "File too large" {
			t.Fatalf("expected file too large, got %v", err)
		}
	})
}

func bytes200() []byte {
	return []byte(strings.Repeat("a", 200))
}

func TestDispositionName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"report.pdf", "report.pdf"},
		{`we"ird\name.pdf`, "weirdname.pdf"},
		{".pdf", "document.pdf"},
		{"", "document.pdf"},
	}
	for _, tc := range cases {
		if got := dispositionName(tc.in); got != tc.want {
			t.Errorf("dispositionName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
