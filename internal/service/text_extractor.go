package service

import (
	"bytes"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"study-set-server/internal/domain"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/net/html"
)

const defaultPageTimeout = 30 * time.Second

// TextExtractor produces best-effort plain text from classified bytes
type TextExtractor struct {
	logger      domain.Logger
	pageTimeout time.Duration
	openPDF     func(data []byte) (pdfPages, error)
}

// NewTextExtractor creates a new text extractor
func NewTextExtractor(logger domain.Logger) *TextExtractor {
	return &TextExtractor{
		logger:      logger,
		pageTimeout: defaultPageTimeout,
		openPDF:     openFitz,
	}
}

// Extract never panics and never fails. Empty output means there was no usable text.
func (e *TextExtractor) Extract(data []byte, mimeType string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Text extraction panicked; returning empty text", "mime_type", mimeType, "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	if len(data) == 0 {
		return ""
	}

	switch Classify("", mimeType) {
	case domain.FormatPDF:
		return e.extractPDF(data)
	case domain.FormatImage:
		// images go through the vision path
		return ""
	case domain.FormatOfficeWord, domain.FormatOfficePresentation:
		// office bytes must be converted to PDF first
		return ""
	case domain.FormatPlainText, domain.FormatUnknown:
		return e.decodeText(data, mimeType)
	default:
		return ""
	}
}

// pdfPages is the subset of *fitz.Document the extractor reads.
type pdfPages interface {
	NumPage() int
	Text(pageNumber int) (string, error)
	Close() error
}

func openFitz(data []byte) (pdfPages, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type pageResult struct {
	page int
	text string
	err  error
}

// extractPDF reads pages on a single goroutine that owns the document and closes it when done.
// The caller stops waiting at the first page that exceeds pageTimeout and keeps what it has.
func (e *TextExtractor) extractPDF(pdfBytes []byte) string {
	doc, err := e.openPDF(pdfBytes)
	if err != nil {
		e.logger.Warn("Failed to open PDF for extraction", "error", err)
		return ""
	}

	numPages := doc.NumPage()
	results := make(chan pageResult, numPages+1)
	var stopped atomic.Bool
	go e.readPages(doc, numPages, results, &stopped)

	timer := time.NewTimer(e.pageTimeout)
	defer timer.Stop()

	pages := make([]string, 0, numPages)
collect:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			timer.Reset(e.pageTimeout)
			if res.err != nil {
				e.logger.Warn("Failed to extract text from page", "page", res.page+1, "total", numPages, "error", res.err)
				continue
			}
			if page := normalizeText(sanitizeText(res.text)); page != "" {
				pages = append(pages, page)
			}
		case <-timer.C:
			stopped.Store(true)
			e.logger.Warn("PDF page extraction timed out; keeping earlier pages",
				"pages_read", len(pages),
				"total", numPages,
				"timeout_sec", int(e.pageTimeout.Seconds()),
			)
			break collect
		}
	}

	text := strings.TrimSpace(strings.Join(pages, "\n\n"))
	e.logger.Debug("PDF text extracted", "pages", numPages, "chars", len(text))
	return text
}

// readPages sends at most one result per page. results must hold numPages+1 values
// so the worker never blocks after the reader has gone.
func (e *TextExtractor) readPages(doc pdfPages, numPages int, results chan<- pageResult, stopped *atomic.Bool) {
	defer close(results)
	defer func() {
		if err := doc.Close(); err != nil {
			e.logger.Debug("Failed to close PDF", "error", err)
		}
	}()
	page := 0
	defer func() {
		if r := recover(); r != nil {
			results <- pageResult{page: page, err: fmt.Errorf("page extraction panicked: %v", r)}
		}
	}()

	for ; page < numPages && !stopped.Load(); page++ {
		text, err := doc.Text(page)
		results <- pageResult{page: page, text: text, err: err}
	}
}

func (e *TextExtractor) decodeText(data []byte, mimeType string) string {
	decoded := bytes.ToValidUTF8(data, []byte{})
	decoded = bytes.TrimPrefix(decoded, []byte("\ufeff"))

	if strings.Contains(strings.ToLower(mimeType), "html") {
		return normalizeText(htmlToText(decoded))
	}
	return strings.TrimSpace(sanitizeText(string(decoded)))
}

// sanitizeText drops NUL, surrogates and control characters other than tab and newlines
func sanitizeText(text string) string {
	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch {
		case r == 0x09 || r == 0x0A || r == 0x0D:
			result.WriteRune(r)
		case r >= 0x20 && r < 0x7F:
			result.WriteRune(r)
		case r >= 0xA0 && (r < 0xD800 || r > 0xDFFF) && r != 0xFFFD:
			result.WriteRune(r)
		}
	}

	return result.String()
}

func htmlToText(b []byte) string {
	doc, err := html.Parse(bytes.NewReader(b))
	if err != nil || doc == nil {
		return ""
	}

	block := map[string]bool{
		"p": true, "div": true, "section": true, "article": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"li": true, "ul": true, "ol": true, "blockquote": true, "tr": true,
	}
	skip := map[string]bool{
		"script": true, "style": true, "head": true, "nav": true,
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if skip[tag] {
				return
			}
			if tag == "br" {
				sb.WriteString("\n")
			}
			if block[tag] {
				sb.WriteString("\n\n")
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				s := sb.String()
				if len(s) > 0 && !strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, " ") {
					sb.WriteString(" ")
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && block[strings.ToLower(n.Data)] {
			sb.WriteString("\n\n")
		}
	}
	walk(doc)

	return sb.String()
}

// normalizeText unifies line endings and collapses runs of blank lines
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			blank++
			if blank == 1 {
				out = append(out, "")
			}
			continue
		}
		blank = 0
		out = append(out, t)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
