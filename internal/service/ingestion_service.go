package service

import (
	"context"

	"study-set-server/internal/domain"
	"study-set-server/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

const pdfMIMEType = "application/pdf"

// IngestionService runs classification, conversion and extraction as one step
type IngestionService struct {
	converter domain.ConversionService
	extractor domain.TextExtractor
	logger    domain.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(converter domain.ConversionService, extractor domain.TextExtractor, logger domain.Logger) *IngestionService {
	return &IngestionService{
		converter: converter,
		extractor: extractor,
		logger:    logger,
	}
}

// ExtractText returns the best-effort text of an upload. Office documents go through
// a PDF intermediate; conversion failures are logged and yield empty text.
func (s *IngestionService) ExtractText(ctx context.Context, file domain.UploadedFile) string {
	format := ClassifyFile(file)
	ctx, span := observability.TraceFunction(ctx, "ingestion", "extract_text", attribute.String("format", format.String()))
	defer span.End()

	var text string
	switch format {
	case domain.FormatOfficeWord, domain.FormatOfficePresentation:
		result, err := s.converter.Convert(ctx, file, domain.ConversionTargetPDF)
		if err != nil {
			s.logger.Warn("Conversion failed during text extraction", "file_name", file.Filename, "error", err)
			return ""
		}
		text = s.extractor.Extract(result.PDF, pdfMIMEType)
	case domain.FormatImage:
		text = ""
	case domain.FormatPDF:
		text = s.extractor.Extract(file.Data, pdfMIMEType)
	case domain.FormatPlainText, domain.FormatUnknown:
		text = s.extractor.Extract(file.Data, file.MimeType)
	}

	span.SetAttributes(attribute.Int("text.length", len(text)))
	return text
}
