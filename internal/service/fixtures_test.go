package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"study-set-server/internal/domain"
)

// buildTestPDF renders a single-page PDF whose text layer holds the given lines.
// No lines produces a page without any text, like a scanned document.
func buildTestPDF(lines ...string) []byte {
	var content strings.Builder
	if len(lines) > 0 {
		content.WriteString("BT /F1 12 Tf 72 720 Td 14 TL")
		for _, line := range lines {
			content.WriteString(fmt.Sprintf(" (%s) Tj T*", line))
		}
		content.WriteString(" ET")
	}
	stream := content.String()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var out strings.Builder
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, out.Len())
		out.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", i+1, obj))
	}
	xref := out.Len()
	out.WriteString(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", len(objects)+1))
	for _, off := range offsets {
		out.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	out.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref))
	return []byte(out.String())
}

// MockLogger discards everything
type MockLogger struct{}

func (m *MockLogger) Info(msg string, fields ...interface{})             {}
func (m *MockLogger) Error(msg string, err error, fields ...interface{}) {}
func (m *MockLogger) Debug(msg string, fields ...interface{})            {}
func (m *MockLogger) Warn(msg string, fields ...interface{})             {}

// MockLanguageModel records every request and answers from a function
type MockLanguageModel struct {
	mu       sync.Mutex
	requests []domain.CompletionRequest
	respond  func(req domain.CompletionRequest) (string, error)
}

func (m *MockLanguageModel) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.respond == nil {
		return "", nil
	}
	return m.respond(req)
}

func (m *MockLanguageModel) Calls() []domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CompletionRequest(nil), m.requests...)
}

// MockObjectStore keeps objects in memory
type MockObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	uploadErr error
	urlErr    error
	removeErr error
	removedCh chan string
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: map[string][]byte{}, removedCh: make(chan string, 16)}
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+path] = data
	return nil
}

func (m *MockObjectStore) PublicURL(bucket, path string) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	return "https://storage.test/" + bucket + "/" + path, nil
}

func (m *MockObjectStore) Remove(ctx context.Context, bucket string, paths []string) error {
	m.mu.Lock()
	for _, p := range paths {
		delete(m.objects, bucket+"/"+p)
		m.removed = append(m.removed, p)
	}
	m.mu.Unlock()
	for _, p := range paths {
		select {
		case m.removedCh <- p:
		default:
		}
	}
	return m.removeErr
}

func (m *MockObjectStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+path]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, path)
	}
	return data, nil
}

func (m *MockObjectStore) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	return out
}

// MockConversionEngine returns canned bytes and counts calls
type MockConversionEngine struct {
	mu    sync.Mutex
	calls int
	pdf   []byte
	err   error
}

func (m *MockConversionEngine) ConvertToPDF(ctx context.Context, data []byte, sourceExt string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.pdf, nil
}

func (m *MockConversionEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockProbe reports a fixed availability
type MockProbe struct {
	available bool
	calls     int
}

func (m *MockProbe) Available(ctx context.Context) bool {
	m.calls++
	return m.available
}
