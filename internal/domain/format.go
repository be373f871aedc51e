package domain

import (
	"path/filepath"
	"strings"
)

// ClassifiedFormat is the handling strategy selected for an upload.
type ClassifiedFormat int

const (
	FormatUnknown ClassifiedFormat = iota
	FormatPlainText
	FormatPDF
	FormatOfficeWord
	FormatOfficePresentation
	FormatImage
)

// String returns the wire name of the format
func (f ClassifiedFormat) String() string {
	switch f {
	case FormatPlainText:
		return "plain_text"
	case FormatPDF:
		return "pdf"
	case FormatOfficeWord:
		return "office_word"
	case FormatOfficePresentation:
		return "office_presentation"
	case FormatImage:
		return "image"
	default:
		return "unknown"
	}
}

// IsOffice reports whether the format needs the conversion engine to become a PDF.
func (f ClassifiedFormat) IsOffice() bool {
	return f == FormatOfficeWord || f == FormatOfficePresentation
}

// UploadedFile is an upload as received at the request boundary.
// It is consumed once per pipeline invocation and never retained.
type UploadedFile struct {
	Data     []byte
	MimeType string
	Filename string
}

// Ext returns the lower-cased extension without the leading dot.
func (f UploadedFile) Ext() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
}

// BaseName returns the filename with its directory and extension stripped.
func (f UploadedFile) BaseName() string {
	name := filepath.Base(strings.TrimSpace(f.Filename))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Size returns the payload length in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Data))
}
