package service

import (
	"path/filepath"
	"strings"

	"study-set-server/internal/domain"
)

var imageMIMEMarkers = []string{"png", "jpeg", "jpg", "heic"}

// Classify maps an upload's filename and declared MIME type to a handling strategy.
// Matching is case-insensitive. A PDF match short-circuits everything else.
func Classify(filename, mimeType string) domain.ClassifiedFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
	mime := strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case ext == "pdf" || strings.Contains(mime, "pdf"):
		return domain.FormatPDF
	case ext == "doc" || ext == "docx" ||
		strings.Contains(mime, "wordprocessingml") || strings.Contains(mime, "msword"):
		return domain.FormatOfficeWord
	case ext == "ppt" || ext == "pptx" ||
		strings.Contains(mime, "presentation") || strings.Contains(mime, "ms-powerpoint"):
		return domain.FormatOfficePresentation
	case isImageMIME(mime):
		return domain.FormatImage
	case strings.HasPrefix(mime, "text/") || ext == "txt" || ext == "md":
		return domain.FormatPlainText
	default:
		return domain.FormatUnknown
	}
}

// ClassifyFile is Classify applied to an UploadedFile.
func ClassifyFile(file domain.UploadedFile) domain.ClassifiedFormat {
	return Classify(file.Filename, file.MimeType)
}

func isImageMIME(mime string) bool {
	for _, marker := range imageMIMEMarkers {
		if strings.Contains(mime, marker) {
			return true
		}
	}
	return false
}

// IsConvertible reports whether the conversion endpoint accepts the format.
func IsConvertible(format domain.ClassifiedFormat) bool {
	switch format {
	case domain.FormatPDF, domain.FormatOfficeWord, domain.FormatOfficePresentation:
		return true
	default:
		return false
	}
}
