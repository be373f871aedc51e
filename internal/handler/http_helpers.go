package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"study-set-server/internal/domain"
	apperrors "study-set-server/pkg/errors"
)

// multipartOverhead is the slack allowed on top of the file limit for form boundaries and fields.
const multipartOverhead = 1 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string            `json:"error"`
	Type      string            `json:"type,omitempty"`
	Details   string            `json:"details,omitempty"`
	Guidance  map[string]string `json:"guidance,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Name      string            `json:"name,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeAppError maps typed failures to their status code and payload.
// Anything untyped becomes a 500 without leaking the cause.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("Internal server error", err)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "type", string(appErr.Type))
	} else {
		logger.Warn("Request rejected", "type", string(appErr.Type), "error", appErr.Error())
	}
	writeJSON(w, appErr.StatusCode, errorResponse{
		Error:     appErr.Message,
		Type:      string(appErr.Type),
		Details:   appErr.Details,
		Guidance:  appErr.Guidance,
		Retryable: appErr.Type == apperrors.ErrorTypeQuizValidation,
	})
}

// readUpload reads the multipart "file" field, enforcing maxFileSize.
func readUpload(w http.ResponseWriter, r *http.Request, maxFileSize int64) (domain.UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.UploadedFile{}, fileTooLarge(maxFileSize)
		}
		return domain.UploadedFile{}, apperrors.NewValidationError("Invalid multipart form", err.Error())
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.UploadedFile{}, apperrors.NewValidationError("No file provided")
	}
	defer file.Close()

	if header.Size > maxFileSize {
		return domain.UploadedFile{}, fileTooLarge(maxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
	if err != nil {
		return domain.UploadedFile{}, apperrors.NewValidationError("Could not read file", err.Error())
	}
	if int64(len(data)) > maxFileSize {
		return domain.UploadedFile{}, fileTooLarge(maxFileSize)
	}
	if len(data) == 0 {
		return domain.UploadedFile{}, apperrors.NewValidationError("File is empty")
	}

	// Sanitize filename
	filename := filepath.Base(header.Filename)

	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return domain.UploadedFile{Data: data, MimeType: mimeType, Filename: filename}, nil
}

func fileTooLarge(maxFileSize int64) error {
	return apperrors.NewValidationError(
		"File too large",
		fmt.Sprintf("maximum upload size is %d bytes", maxFileSize),
	)
}

// decodeJSONBody decodes a bounded JSON request body into dst.
// With allowEmpty set, a missing body leaves dst untouched.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, allowEmpty bool, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewValidationError("Request body too large")
		}
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return apperrors.NewValidationError("Request body is required")
		}
		return apperrors.NewValidationError("Invalid JSON body", err.Error())
	}
	return nil
}
