package llm

import (
	"context"
	"fmt"

	"study-set-server/internal/domain"
)

// Unavailable is used when no provider is configured. Every call fails as a
// transport error so titles fall back and quizzes report model_unavailable.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if u.Reason == "" {
		return "", domain.ErrModelUnavailable
	}
	return "", fmt.Errorf("%w: %s", domain.ErrModelUnavailable, u.Reason)
}
