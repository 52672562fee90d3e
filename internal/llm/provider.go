// Package llm holds the chat model transports used by the chat endpoint.
// Every transport implements ChatCompleter and reports failures as
// *UpstreamError classified by one of the Err* kinds.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/change-compliance/internal/config"
)

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
}

// ChatCompleter generates the next assistant turn for a conversation.
type ChatCompleter interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
	Model() string
}

// Failure kinds. Match with errors.Is.
var (
	ErrMissingCredentials = errors.New("llm: credentials not found")
	ErrAccessDenied       = errors.New("llm: access denied")
	ErrValidation         = errors.New("llm: request rejected")
	ErrUpstream           = errors.New("llm: upstream error")
)

// UpstreamError is a classified failure reported by a model provider.
type UpstreamError struct {
	Provider string
	Kind     error
	Code     string
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Is(target error) bool {
	return target == e.Kind
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// New builds the completer selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (ChatCompleter, error) {
	switch cfg.Provider {
	case config.ProviderBedrock:
		return NewBedrock(ctx, cfg)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, nil), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
