package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/change-compliance/internal/llm"
	"github.com/spec-kit/change-compliance/internal/observability"
	"github.com/spec-kit/change-compliance/internal/repository"
	"github.com/spec-kit/change-compliance/pkg/util/errorutil"
)

// EmptyReplyFallback replaces a completion that carried no text.
const EmptyReplyFallback = "I couldn't generate a response. Please try again."

// CompletionCache stores finished completions by key. A miss is reported as
// ok=false with a nil error.
type CompletionCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ChatService answers questions about the catalog through a chat model.
type ChatService struct {
	tickets     repository.TicketRepository
	completer   llm.ChatCompleter
	cache       CompletionCache
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxTokens   int32
	temperature float32
}

// ChatDependencies bundles collaborators for the chat service. Cache and
// Metrics are optional.
type ChatDependencies struct {
	TicketRepo  repository.TicketRepository
	Completer   llm.ChatCompleter
	Cache       CompletionCache
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	MaxTokens   int
	Temperature float64
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		tickets:     deps.TicketRepo,
		completer:   deps.Completer,
		cache:       deps.Cache,
		logger:      logger,
		metrics:     deps.Metrics,
		maxTokens:   int32(deps.MaxTokens),
		temperature: float32(deps.Temperature),
	}
}

// SystemPrompt renders the instructions and ticket context sent with every
// conversation.
func (s *ChatService) SystemPrompt(ctx context.Context) (string, error) {
	return BuildSystemPrompt(BuildChatContext(s.tickets.All()))
}

// Reply generates the next assistant turn. Completer failures are returned
// unchanged so callers can classify them with errors.Is against the llm
// error kinds.
func (s *ChatService) Reply(ctx context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", errorutil.NewValidationError("messages are required", nil)
	}

	system, err := s.SystemPrompt(ctx)
	if err != nil {
		return "", errorutil.NewInternalError(err)
	}

	provider := s.completer.Name()
	exchangeID := uuid.NewString()
	logger := s.logger.With(
		zap.String("exchange_id", exchangeID),
		zap.String("provider", provider),
		zap.String("model", s.completer.Model()),
		zap.Int("turns", len(messages)),
	)

	key := s.cacheKey(system, messages)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("chat cache lookup failed", zap.Error(err))
		case ok:
			logger.Info("chat completion served from cache")
			s.metrics.RecordChat(provider, observability.ChatOutcomeCacheHit)
			return cached, nil
		}
	}

	text, err := s.completer.Complete(ctx, llm.Request{
		System:      system,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("chat completion failed", zap.Error(err))
		s.metrics.RecordChat(provider, observability.ChatOutcomeError)
		return "", err
	}
	s.metrics.RecordChat(provider, observability.ChatOutcomeOK)

	if text == "" {
		logger.Info("chat completion returned no text")
		return EmptyReplyFallback, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text); err != nil {
			logger.Warn("chat cache store failed", zap.Error(err))
		}
	}
	logger.Info("chat completion generated", zap.Int("response_chars", len(text)))
	return text, nil
}

type cacheKeyInput struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	System   string        `json:"system"`
	Messages []llm.Message `json:"messages"`
}

func (s *ChatService) cacheKey(system string, messages []llm.Message) string {
	// Only strings and string-typed fields: Marshal cannot fail here.
	raw, _ := json.Marshal(cacheKeyInput{
		Provider: s.completer.Name(),
		Model:    s.completer.Model(),
		System:   system,
		Messages: messages,
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
