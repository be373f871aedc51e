package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"study-set-server/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

// QuizValidator checks structured model output against the question schema.
// The minimum question count is bound per call.
type QuizValidator struct{}

// NewQuizValidator creates a new validator
func NewQuizValidator() *QuizValidator {
	return &QuizValidator{}
}

// quizSchema returns the response schema with minItems set to requiredCount
func quizSchema(requiredCount int) map[string]interface{} {
	return map[string]interface{}{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []interface{}{"questions"},
		"properties": map[string]interface{}{
			"questions": map[string]interface{}{
				"type":     "array",
				"minItems": requiredCount,
				"items": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"question", "options", "answer", "category"},
					"properties": map[string]interface{}{
						"question": map[string]interface{}{"type": "string", "minLength": 1, "pattern": `\S`},
						"options": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
						"answer":           map[string]interface{}{"type": "string"},
						"category":         map[string]interface{}{"type": "string"},
						"explanation":      map[string]interface{}{"type": []interface{}{"string", "null"}},
						"related_material": map[string]interface{}{"type": []interface{}{"string", "null"}},
					},
				},
			},
		},
	}
}

// Validate parses raw model output and accepts it only if every question is well-formed
// and at least requiredCount questions are present. Rejection is all-or-nothing.
func (v *QuizValidator) Validate(raw string, requiredCount int) ([]domain.QuizQuestion, error) {
	if requiredCount < 1 {
		return nil, &domain.QuizValidationError{
			RequiredCount: requiredCount,
			Failures:      []string{fmt.Sprintf("required question count must be at least 1, got %d", requiredCount)},
		}
	}

	payload, err := normalizeQuizPayload(raw)
	if err != nil {
		return nil, &domain.QuizValidationError{
			RequiredCount: requiredCount,
			Failures:      []string{err.Error()},
		}
	}

	received, isList := countQuestions(payload)
	insufficient := isList && received < requiredCount

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(quizSchema(requiredCount)),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return nil, &domain.QuizValidationError{
			RequiredCount:     requiredCount,
			ReceivedCount:     received,
			Failures:          []string{fmt.Sprintf("response could not be validated: %v", err)},
			InsufficientCount: insufficient,
		}
	}

	if !result.Valid() {
		failures := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			failures = append(failures, e.String())
		}
		return nil, &domain.QuizValidationError{
			RequiredCount:     requiredCount,
			ReceivedCount:     received,
			Failures:          failures,
			InsufficientCount: insufficient,
		}
	}

	var parsed domain.QuizResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, &domain.QuizValidationError{
			RequiredCount: requiredCount,
			ReceivedCount: received,
			Failures:      []string{fmt.Sprintf("response could not be decoded: %v", err)},
		}
	}
	return parsed.Questions, nil
}

// normalizeQuizPayload strips code fences and surrounding prose, and wraps a bare array
func normalizeQuizPayload(raw string) ([]byte, error) {
	cleaned := cleanJSONResponse(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("response is empty")
	}

	if !json.Valid([]byte(cleaned)) {
		start := strings.IndexAny(cleaned, "{[")
		end := strings.LastIndexAny(cleaned, "}]")
		if start < 0 || end <= start || !json.Valid([]byte(cleaned[start:end+1])) {
			return nil, fmt.Errorf("response is not valid JSON")
		}
		cleaned = cleaned[start : end+1]
	}

	payload := []byte(cleaned)
	if bytes.HasPrefix(payload, []byte("[")) {
		wrapped, err := json.Marshal(map[string]json.RawMessage{"questions": payload})
		if err != nil {
			return nil, fmt.Errorf("response is not valid JSON")
		}
		payload = wrapped
	}
	return payload, nil
}

// countQuestions reports how many entries "questions" holds and whether it is a list at all
func countQuestions(payload []byte) (int, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return 0, false
	}
	raw, ok := fields["questions"]
	if !ok {
		return 0, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return 0, false
	}
	return len(items), true
}

// cleanJSONResponse removes markdown code block markers
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
	}
	return strings.TrimSpace(response)
}
