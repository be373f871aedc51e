package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study-set-server/internal/domain"

	"cloud.google.com/go/vertexai/genai"
)

// VertexModel sends completions to Gemini on Vertex AI
type VertexModel struct {
	client      *genai.Client
	textModel   string
	visionModel string
	timeout     time.Duration
	logger      domain.Logger
}

// NewVertexModel creates the Vertex AI client once for the process
func NewVertexModel(ctx context.Context, projectID, location, textModel, visionModel string, timeout time.Duration, logger domain.Logger) (*VertexModel, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	return &VertexModel{
		client:      client,
		textModel:   textModel,
		visionModel: visionModel,
		timeout:     timeout,
		logger:      logger,
	}, nil
}

// Complete runs one Gemini generation
func (m *VertexModel) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	name := m.textModel
	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.ImageURL != "" {
		name = m.visionModel
		mimeType := req.ImageMIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, genai.FileData{MIMEType: mimeType, FileURI: req.ImageURL})
	}

	model := m.client.GenerativeModel(name)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini call failed: %v", domain.ErrModelUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from model", domain.ErrModelUnavailable)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying client
func (m *VertexModel) Close() error {
	return m.client.Close()
}
