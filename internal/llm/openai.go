package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/change-compliance/internal/config"
)

const openAIName = "openai"

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	key     string
	model   string
	baseURL string
	http    *http.Client
}

// NewOpenAI builds the transport. A nil httpClient gets one bounded by the
// configured LLM timeout.
func NewOpenAI(cfg config.LLMConfig, httpClient *http.Client) *OpenAI {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return &OpenAI{
		key:     cfg.OpenAIKey,
		model:   cfg.OpenAIModel,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		http:    httpClient,
	}
}

func (o *OpenAI) Name() string  { return openAIName }
func (o *OpenAI) Model() string { return o.model }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int32           `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete posts the conversation with the system prompt as the first turn.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(o.key) == "" {
		return "", &UpstreamError{Provider: openAIName, Kind: ErrMissingCredentials, Message: "OPENAI_API_KEY is not set"}
	}

	body := openAIRequest{
		Model:       o.model,
		Messages:    make([]openAIMessage, 0, len(req.Messages)+1),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.key)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", openAIStatusError(resp)
	}

	var out openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func openAIStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := strings.TrimSpace(string(raw))
	var parsed openAIErrorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	kind := ErrUpstream
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrAccessDenied
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		kind = ErrValidation
	}
	return &UpstreamError{
		Provider: openAIName,
		Kind:     kind,
		Code:     fmt.Sprintf("status=%d", resp.StatusCode),
		Message:  message,
	}
}
