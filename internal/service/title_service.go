package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"study-set-server/internal/domain"
	"study-set-server/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// MinExtractedTextLength is the shortest text worth sending to a model.
	MinExtractedTextLength = 50
	titlePromptTextLimit   = 1000
	fallbackTitlePrefix    = "Study Set - "
	fallbackDateLayout     = "1/2/2006"
	titleQuoteChars        = "\"'`“”‘’«»"
)

const titleSystemPrompt = "You name study materials. Reply with a concise, descriptive title of 3 to 7 words " +
	"that captures the main topic of the content. Do not use the words \"study set\" or \"study guide\". " +
	"Do not wrap the title in quotes. Reply with the title only."

const visionTitlePrompt = "Look at this image of study material and reply with a concise, descriptive title " +
	"of 3 to 7 words for its main topic. Do not use the words \"study set\" or \"study guide\". " +
	"Do not wrap the title in quotes. Reply with the title only."

// TitleService names uploads. It never returns an error; the worst case is a dated fallback.
type TitleService struct {
	model     domain.LanguageModel
	extractor domain.TextExtractor
	stager    domain.AssetStager
	logger    domain.Logger
	now       func() time.Time
}

// NewTitleService creates a new title service
func NewTitleService(model domain.LanguageModel, extractor domain.TextExtractor, stager domain.AssetStager, logger domain.Logger) *TitleService {
	return &TitleService{
		model:     model,
		extractor: extractor,
		stager:    stager,
		logger:    logger,
		now:       time.Now,
	}
}

// FallbackTitle is the deterministic dated name used when no better title is available.
func (s *TitleService) FallbackTitle() string {
	return fallbackTitlePrefix + s.now().Format(fallbackDateLayout)
}

// GenerateTitle picks the naming path from the upload's classification.
func (s *TitleService) GenerateTitle(ctx context.Context, file domain.UploadedFile) (title string) {
	format := ClassifyFile(file)
	ctx, span := observability.TraceFunction(ctx, "title", "generate", attribute.String("format", format.String()))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Title generation panicked; using fallback", "file_name", file.Filename, "panic", fmt.Sprint(r))
			title = s.FallbackTitle()
		}
		if strings.TrimSpace(title) == "" {
			title = s.FallbackTitle()
		}
	}()

	switch format {
	case domain.FormatOfficeWord, domain.FormatOfficePresentation:
		return file.BaseName()
	case domain.FormatImage:
		return s.titleFromImage(ctx, file)
	case domain.FormatPDF:
		return s.titleFromText(ctx, s.extractor.Extract(file.Data, "application/pdf"))
	case domain.FormatPlainText, domain.FormatUnknown:
		return s.titleFromText(ctx, s.extractor.Extract(file.Data, file.MimeType))
	default:
		return s.FallbackTitle()
	}
}

func (s *TitleService) titleFromText(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinExtractedTextLength {
		s.logger.Debug("Extracted text too short for naming; using fallback", "chars", utf8.RuneCountInString(text))
		return s.FallbackTitle()
	}

	raw, err := s.model.Complete(ctx, domain.CompletionRequest{
		System:      titleSystemPrompt,
		Prompt:      truncateRunes(text, titlePromptTextLimit),
		Temperature: 0.3,
		MaxTokens:   32,
	})
	if err != nil {
		s.logger.Warn("Title model call failed; using fallback", "error", err)
		return s.FallbackTitle()
	}

	if title := cleanTitle(raw); title != "" {
		return title
	}
	return s.FallbackTitle()
}

func (s *TitleService) titleFromImage(ctx context.Context, file domain.UploadedFile) string {
	asset := s.stager.Stage(ctx, file.Data, file.Filename, file.MimeType)
	if asset == nil {
		s.logger.Warn("Image staging failed; falling back to text naming", "file_name", file.Filename)
		return s.titleFromText(ctx, s.extractor.Extract(file.Data, file.MimeType))
	}
	defer s.stager.Unstage(asset)

	raw, err := s.model.Complete(ctx, domain.CompletionRequest{
		Prompt:        visionTitlePrompt,
		ImageURL:      asset.URL,
		ImageMIMEType: file.MimeType,
		Temperature:   0.3,
		MaxTokens:     32,
	})
	if err != nil {
		s.logger.Warn("Vision model call failed; falling back to text naming", "file_name", file.Filename, "error", err)
		return s.titleFromText(ctx, s.extractor.Extract(file.Data, file.MimeType))
	}

	if title := cleanTitle(raw); title != "" {
		return title
	}
	return s.FallbackTitle()
}

// cleanTitle keeps the first non-empty line and strips surrounding quotes
func cleanTitle(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Trim(strings.TrimSpace(line), titleQuoteChars)
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
