package handler

import (
	"net/http"

	"study-set-server/internal/domain"
	apperrors "study-set-server/pkg/errors"
)

// TitleResponse is the body of the naming endpoint.
type TitleResponse struct {
	Name string `json:"name"`
}

// TitleHandler serves study-set name suggestions.
type TitleHandler struct {
	service     domain.TitleService
	maxFileSize int64
	logger      domain.Logger
}

// NewTitleHandler creates a new title handler
func NewTitleHandler(service domain.TitleService, maxFileSize int64, logger domain.Logger) *TitleHandler {
	return &TitleHandler{service: service, maxFileSize: maxFileSize, logger: logger}
}

// GenerateName always answers with a name, even when the upload itself is rejected.
func (h *TitleHandler) GenerateName(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, h.maxFileSize)
	if err != nil {
		status := http.StatusBadRequest
		resp := errorResponse{Error: err.Error(), Name: h.service.FallbackTitle()}
		if appErr, ok := apperrors.As(err); ok {
			status = appErr.StatusCode
			resp.Error = appErr.Message
			resp.Type = string(appErr.Type)
			resp.Details = appErr.Details
		}
		h.logger.Warn("Naming request rejected", "error", err.Error())
		writeJSON(w, status, resp)
		return
	}

	name := h.service.GenerateTitle(r.Context(), file)
	writeJSON(w, http.StatusOK, TitleResponse{Name: name})
}
