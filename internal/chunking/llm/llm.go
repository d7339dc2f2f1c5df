package llm

import (
	"context"
	"errors"
)

// Provider is one round trip to a language model with a system instruction.
type Provider interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// ErrPermissionDenied marks a refused model call. Providers wrap their
// transport-level 403/PermissionDenied into this sentinel; it signals a
// deployment problem, so the agentic pipeline aborts instead of falling back.
var ErrPermissionDenied = errors.New("language model access denied")
