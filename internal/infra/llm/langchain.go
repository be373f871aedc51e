package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study-set-server/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultModelTimeout = 60 * time.Second

// LangChainModel sends completions through langchaingo. Vision requests go to a
// separate model so a cheap text model can be paired with a vision-capable one.
type LangChainModel struct {
	text     llms.Model
	vision   llms.Model
	timeout  time.Duration
	provider string
	logger   domain.Logger
}

// NewLangChainModel wraps already constructed langchaingo models
func NewLangChainModel(provider string, text, vision llms.Model, timeout time.Duration, logger domain.Logger) *LangChainModel {
	if vision == nil {
		vision = text
	}
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	return &LangChainModel{
		text:     text,
		vision:   vision,
		timeout:  timeout,
		provider: provider,
		logger:   logger,
	}
}

// NewOpenAIModel builds text and vision clients for an OpenAI-compatible endpoint
func NewOpenAIModel(apiKey, baseURL, textModel, visionModel string, timeout time.Duration, logger domain.Logger) (*LangChainModel, error) {
	text, err := newOpenAIClient(apiKey, baseURL, textModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai text client: %w", err)
	}
	vision, err := newOpenAIClient(apiKey, baseURL, visionModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai vision client: %w", err)
	}
	return NewLangChainModel("openai", text, vision, timeout, logger), nil
}

func newOpenAIClient(apiKey, baseURL, model string) (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(opts...)
}

// NewOllamaModel builds clients for a local Ollama server
func NewOllamaModel(serverURL, textModel, visionModel string, timeout time.Duration, logger domain.Logger) (*LangChainModel, error) {
	text, err := ollama.New(ollama.WithServerURL(serverURL), ollama.WithModel(textModel))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama text client: %w", err)
	}
	vision, err := ollama.New(ollama.WithServerURL(serverURL), ollama.WithModel(visionModel))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama vision client: %w", err)
	}
	return NewLangChainModel("ollama", text, vision, timeout, logger), nil
}

// Complete runs one completion. The call is detached from caller cancellation and
// bounded by the model timeout instead.
func (m *LangChainModel) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	model := m.text
	parts := []llms.ContentPart{llms.TextPart(req.Prompt)}
	if req.ImageURL != "" {
		model = m.vision
		parts = append(parts, llms.ImageURLPart(req.ImageURL))
	}

	messages := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	started := time.Now()
	resp, err := model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %s completion failed: %v", domain.ErrModelUnavailable, m.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", domain.ErrModelUnavailable, m.provider)
	}

	m.logger.Debug("Model completion finished",
		"provider", m.provider,
		"vision", req.ImageURL != "",
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return resp.Choices[0].Content, nil
}
