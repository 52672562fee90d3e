package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/change-compliance/internal/llm"
	"github.com/spec-kit/change-compliance/internal/observability"
	"github.com/spec-kit/change-compliance/pkg/util/errorutil"
)

type stubCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

func (s *stubCompleter) Name() string  { return "stub" }
func (s *stubCompleter) Model() string { return "stub-model" }

type memoryCache struct {
	entries map[string]string
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func question(text string) []llm.Message {
	return []llm.Message{{Role: llm.RoleUser, Content: text}}
}

func TestReply_SendsSystemPromptAndInferenceSettings(t *testing.T) {
	completer := &stubCompleter{reply: "**CHG0012348** has no rollback plan."}
	svc := NewChatService(ChatDependencies{
		TicketRepo: referenceCatalog(t),
		Completer:  completer,
		MaxTokens:  1024,
	})

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: "What is wrong with CHG0012348?"},
		{Role: llm.RoleAssistant, Content: "Let me check."},
		{Role: llm.RoleUser, Content: "Go on."},
	}
	text, err := svc.Reply(context.Background(), messages)
	require.NoError(t, err)
	assert.Equal(t, "**CHG0012348** has no rollback plan.", text)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	want, err := svc.SystemPrompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, req.System)
	assert.Equal(t, messages, req.Messages)
	assert.Equal(t, int32(1024), req.MaxTokens)
	assert.Zero(t, req.Temperature)
}

func TestReply_EmptyTextFallsBack(t *testing.T) {
	svc := NewChatService(ChatDependencies{TicketRepo: referenceCatalog(t), Completer: &stubCompleter{}})

	text, err := svc.Reply(context.Background(), question("hello"))
	require.NoError(t, err)
	assert.Equal(t, EmptyReplyFallback, text)
}

func TestReply_RejectsEmptyConversation(t *testing.T) {
	completer := &stubCompleter{reply: "x"}
	svc := NewChatService(ChatDependencies{TicketRepo: referenceCatalog(t), Completer: completer})

	_, err := svc.Reply(context.Background(), nil)
	var domainErr *errorutil.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Empty(t, completer.requests)
}

func TestReply_PassesCompleterErrorsThrough(t *testing.T) {
	upstream := &llm.UpstreamError{Provider: "stub", Kind: llm.ErrAccessDenied, Code: "AccessDeniedException", Message: "nope"}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := NewChatService(ChatDependencies{
		TicketRepo: referenceCatalog(t),
		Completer:  &stubCompleter{err: upstream},
		Metrics:    metrics,
	})

	_, err := svc.Reply(context.Background(), question("hello"))
	assert.ErrorIs(t, err, llm.ErrAccessDenied)
	var got *llm.UpstreamError
	require.ErrorAs(t, err, &got)
	assert.Same(t, upstream, got)
}

func TestReply_CacheHitSkipsCompleter(t *testing.T) {
	completer := &stubCompleter{reply: "fresh answer"}
	cache := newMemoryCache()
	reg := prometheus.NewRegistry()
	svc := NewChatService(ChatDependencies{
		TicketRepo: referenceCatalog(t),
		Completer:  completer,
		Cache:      cache,
		Metrics:    observability.NewMetrics(reg),
	})
	ctx := context.Background()

	first, err := svc.Reply(ctx, question("How many tickets are non-compliant?"))
	require.NoError(t, err)
	second, err := svc.Reply(ctx, question("How many tickets are non-compliant?"))
	require.NoError(t, err)

	assert.Equal(t, "fresh answer", first)
	assert.Equal(t, "fresh answer", second)
	assert.Len(t, completer.requests, 1)
	assert.Len(t, cache.entries, 1)

	_, err = svc.Reply(ctx, question("Something else?"))
	require.NoError(t, err)
	assert.Len(t, completer.requests, 2)
	assert.Len(t, cache.entries, 2)

	count, err := testutil.GatherAndCount(reg, "chat_completions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "ok and cache_hit series")
}

func TestReply_CacheFailuresAreMisses(t *testing.T) {
	completer := &stubCompleter{reply: "answer"}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis: connection refused")
	cache.setErr = errors.New("redis: connection refused")
	svc := NewChatService(ChatDependencies{TicketRepo: referenceCatalog(t), Completer: completer, Cache: cache})

	text, err := svc.Reply(context.Background(), question("hi"))
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	assert.Len(t, completer.requests, 1)
}

func TestReply_FallbackIsNotCached(t *testing.T) {
	cache := newMemoryCache()
	svc := NewChatService(ChatDependencies{TicketRepo: referenceCatalog(t), Completer: &stubCompleter{}, Cache: cache})

	_, err := svc.Reply(context.Background(), question("hi"))
	require.NoError(t, err)
	assert.Empty(t, cache.entries)
}
