package service

import (
	"context"
	"fmt"
	"strings"

	"study-set-server/internal/domain"
	apperrors "study-set-server/pkg/errors"
	"study-set-server/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

var convertibleExtensions = map[string]bool{"pdf": true, "doc": true, "docx": true, "ppt": true, "pptx": true}

// convertibleMIMEMarkers excludes the bare "presentation" substring, which also matches ODF.
var convertibleMIMEMarkers = []string{"pdf", "msword", "wordprocessingml", "ms-powerpoint", "presentationml"}

// ConversionService turns office documents into PDFs through the external engine
type ConversionService struct {
	engine domain.ConversionEngine
	probe  domain.AvailabilityProbe
	logger domain.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(engine domain.ConversionEngine, probe domain.AvailabilityProbe, logger domain.Logger) *ConversionService {
	return &ConversionService{
		engine: engine,
		probe:  probe,
		logger: logger,
	}
}

// Convert returns PDF bytes for a PDF, Word or PowerPoint upload.
// PDFs pass through untouched. The engine is called at most once and only after the probe succeeds.
func (s *ConversionService) Convert(ctx context.Context, file domain.UploadedFile, targetFormat string) (result *domain.ConversionResult, err error) {
	format := ClassifyFile(file)
	ctx, span := observability.TraceFunction(ctx, "conversion", "convert",
		attribute.String("format", format.String()),
		attribute.Int64("bytes", file.Size()),
	)
	defer observability.FinishSpan(span, &err)

	target := strings.ToLower(strings.TrimSpace(targetFormat))
	if target == "" {
		target = domain.ConversionTargetPDF
	}
	if target != domain.ConversionTargetPDF {
		return nil, apperrors.NewUnsupportedFormatError(
			fmt.Sprintf("target format %q is not supported; only pdf is available", targetFormat),
			domain.ErrUnsupportedFormat,
		)
	}

	if !IsConvertible(format) || !hasConvertibleType(file) {
		return nil, apperrors.NewUnsupportedFormatError(
			"only doc, docx, ppt, pptx and pdf files can be converted",
			domain.ErrUnsupportedFormat,
		)
	}

	filename := pdfFilename(file)
	switch {
	case format == domain.FormatPDF:
		return &domain.ConversionResult{PDF: file.Data, Filename: filename, PassThrough: true}, nil
	case format.IsOffice():
		return s.convertOffice(ctx, file, filename)
	default:
		return nil, apperrors.NewUnsupportedFormatError("unrecognized format", domain.ErrUnsupportedFormat)
	}
}

// hasConvertibleType checks the upload against the allow-list. A named extension must be on it;
// without one, the declared MIME type must name a PDF or a Microsoft Office format.
func hasConvertibleType(file domain.UploadedFile) bool {
	if ext := file.Ext(); ext != "" {
		return convertibleExtensions[ext]
	}
	mime := strings.ToLower(file.MimeType)
	for _, marker := range convertibleMIMEMarkers {
		if strings.Contains(mime, marker) {
			return true
		}
	}
	return false
}

func (s *ConversionService) convertOffice(ctx context.Context, file domain.UploadedFile, filename string) (*domain.ConversionResult, error) {
	if !s.probe.Available(ctx) {
		s.logger.Warn("Conversion engine unavailable", "file_name", file.Filename)
		return nil, apperrors.NewEngineUnavailableError(
			"LibreOffice is not installed or cannot be started on the server",
			domain.LibreOfficeInstallGuidance(),
			domain.ErrEngineUnavailable,
		)
	}

	ext := file.Ext()
	if ext == "" {
		ext = defaultOfficeExt(ClassifyFile(file))
	}

	pdf, err := s.engine.ConvertToPDF(ctx, file.Data, ext)
	if err != nil {
		s.logger.Error("Document conversion failed", err, "file_name", file.Filename, "source_ext", ext)
		return nil, apperrors.NewConversionFailedError(
			"failed to convert document to PDF",
			err.Error(),
			fmt.Errorf("%w: %v", domain.ErrConversionFailed, err),
		)
	}

	s.logger.Info("Document converted", "file_name", file.Filename, "source_ext", ext, "pdf_bytes", len(pdf))
	return &domain.ConversionResult{PDF: pdf, Filename: filename}, nil
}

func pdfFilename(file domain.UploadedFile) string {
	base := file.BaseName()
	if base == "" {
		base = "document"
	}
	return base + "." + domain.ConversionTargetPDF
}

func defaultOfficeExt(format domain.ClassifiedFormat) string {
	if format == domain.FormatOfficePresentation {
		return "pptx"
	}
	return "docx"
}
