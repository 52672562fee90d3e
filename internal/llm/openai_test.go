package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/change-compliance/internal/config"
)

func newOpenAIForTest(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAI(config.LLMConfig{
		OpenAIKey:     "sk-test",
		OpenAIModel:   "gpt-test",
		OpenAIBaseURL: srv.URL + "/v1/",
	}, srv.Client())
}

func TestOpenAIComplete_SendsSystemPromptFirst(t *testing.T) {
	var got openAIRequest
	client := newOpenAIForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**CHG0012352** is non-compliant."}}]}`))
	})

	text, err := client.Complete(context.Background(), Request{
		System:    "system prompt",
		Messages:  []Message{{Role: RoleUser, Content: "status of CHG0012352?"}},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, "**CHG0012352** is non-compliant.", text)

	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, int32(256), got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openAIMessage{Role: "system", Content: "system prompt"}, got.Messages[0])
	assert.Equal(t, openAIMessage{Role: "user", Content: "status of CHG0012352?"}, got.Messages[1])
}

func TestOpenAIComplete_NoChoicesYieldsEmpty(t *testing.T) {
	client := newOpenAIForTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	text, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestOpenAIComplete_ClassifiesStatusCodes(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:        ErrAccessDenied,
		http.StatusBadRequest:          ErrValidation,
		http.StatusTooManyRequests:     ErrUpstream,
		http.StatusInternalServerError: ErrUpstream,
	}
	for status, kind := range cases {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newOpenAIForTest(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":{"message":"upstream said no","type":"x"}}`))
			})

			_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
			assert.ErrorIs(t, err, kind)
			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, "upstream said no", upstream.Message)
		})
	}
}

func TestOpenAIComplete_MissingKey(t *testing.T) {
	client := NewOpenAI(config.LLMConfig{OpenAIModel: "gpt-test"}, nil)

	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, "openai", client.Name())
}

func TestNew_SelectsProvider(t *testing.T) {
	c, err := New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI, OpenAIModel: "gpt-test"})
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
	assert.Equal(t, "gpt-test", c.Model())

	_, err = New(context.Background(), config.LLMConfig{Provider: "watson"})
	assert.Error(t, err)
}
