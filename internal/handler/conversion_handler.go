package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"study-set-server/internal/domain"
)

// ConversionHandler serves document-to-PDF conversion.
type ConversionHandler struct {
	service     domain.ConversionService
	maxFileSize int64
	logger      domain.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service domain.ConversionService, maxFileSize int64, logger domain.Logger) *ConversionHandler {
	return &ConversionHandler{service: service, maxFileSize: maxFileSize, logger: logger}
}

// Convert accepts a multipart "file" and an optional "targetFormat" and returns the PDF bytes.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	file, err := readUpload(w, r, h.maxFileSize)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	target := strings.TrimSpace(r.FormValue("targetFormat"))

	h.logger.Info("Converting document",
		"filename", file.Filename,
		"mime_type", file.MimeType,
		"size", file.Size(),
		"target", target,
	)

	result, err := h.service.Convert(r.Context(), file, target)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dispositionName(result.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.PDF); err != nil {
		h.logger.Warn("Failed to write PDF response", "error", err.Error())
	}
}

// dispositionName keeps the header value on one line and free of quotes.
func dispositionName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "" || name == ".pdf" {
		return "document.pdf"
	}
	return name
}
