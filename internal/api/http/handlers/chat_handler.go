package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/change-compliance/internal/api/dto"
	"github.com/spec-kit/change-compliance/internal/llm"
	"github.com/spec-kit/change-compliance/internal/service"
	apperrors "github.com/spec-kit/change-compliance/pkg/util/errorutil"
)

// ChatHandler serves the compliance assistant.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// Chat POST /api/chat.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Messages) == 0 {
		return apperrors.NewValidationError("messages required", nil)
	}
	for i, m := range req.Messages {
		if m.Role != string(llm.RoleUser) && m.Role != string(llm.RoleAssistant) {
			return apperrors.NewValidationError("role must be user or assistant", map[string]any{
				"index": i,
				"role":  m.Role,
			})
		}
	}

	text, err := h.service.Reply(c.UserContext(), req.ToLLMMessages())
	if err != nil {
		return chatError(err)
	}
	return c.JSON(dto.ChatResponse{Response: text})
}

// chatError maps completer failures to the messages shown in the dashboard.
func chatError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	var upstream *llm.UpstreamError
	if !errors.As(err, &upstream) {
		return apperrors.NewUpstreamError("CHAT_ERROR", "Chat error: "+err.Error(), err)
	}

	openAI := upstream.Provider == "openai"
	switch {
	case errors.Is(err, llm.ErrMissingCredentials):
		if openAI {
			return apperrors.NewUpstreamError("LLM_CREDENTIALS_MISSING", "OpenAI API key not found. Set OPENAI_API_KEY.", err)
		}
		return apperrors.NewUpstreamError("LLM_CREDENTIALS_MISSING", "AWS credentials not found. Run 'aws configure' or set up IAM role/profile.", err)
	case errors.Is(err, llm.ErrAccessDenied):
		if openAI {
			return apperrors.NewUpstreamError("LLM_ACCESS_DENIED", "OpenAI API key rejected. Check the key and its permissions. Error: "+upstream.Message, err)
		}
		return apperrors.NewUpstreamError("LLM_ACCESS_DENIED", "AWS credentials found but no access to Bedrock. Check IAM permissions. Error: "+upstream.Message, err)
	case errors.Is(err, llm.ErrValidation):
		if openAI {
			return apperrors.NewUpstreamError("LLM_VALIDATION_FAILED", "OpenAI validation error. Ensure the model is available to this key. Error: "+upstream.Message, err)
		}
		return apperrors.NewUpstreamError("LLM_VALIDATION_FAILED", "Bedrock validation error. Ensure model is enabled in AWS Console. Error: "+upstream.Message, err)
	default:
		return apperrors.NewUpstreamError("LLM_ERROR", fmt.Sprintf("%s error: %s", providerLabel(upstream.Provider), upstream.Message), err)
	}
}

func providerLabel(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "bedrock":
		return "Bedrock"
	case "":
		return "LLM"
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
