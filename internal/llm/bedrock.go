package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/spec-kit/change-compliance/internal/config"
)

const bedrockName = "bedrock"

type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Bedrock calls the AWS Bedrock Converse API.
type Bedrock struct {
	client  converser
	creds   aws.CredentialsProvider
	modelID string
	timeout time.Duration
}

// NewBedrock resolves AWS configuration for cfg.Region and the optional
// shared profile. Credentials are resolved lazily on each call.
func NewBedrock(ctx context.Context, cfg config.LLMConfig) (*Bedrock, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Bedrock{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		creds:   awsCfg.Credentials,
		modelID: cfg.ModelID,
		timeout: cfg.Timeout(),
	}, nil
}

func (b *Bedrock) Name() string  { return bedrockName }
func (b *Bedrock) Model() string { return b.modelID }

// Complete sends the conversation to Converse and concatenates the text
// blocks of the reply. An empty string means the model produced no text.
func (b *Bedrock) Complete(ctx context.Context, req Request) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	if b.creds != nil {
		if _, err := b.creds.Retrieve(ctx); err != nil {
			return "", &UpstreamError{Provider: bedrockName, Kind: ErrMissingCredentials, Message: err.Error(), Err: err}
		}
	}

	out, err := b.client.Converse(ctx, b.buildInput(req))
	if err != nil {
		return "", classifyBedrockError(err)
	}
	return converseText(out), nil
}

func (b *Bedrock) buildInput(req Request) *bedrockruntime.ConverseInput {
	messages := make([]types.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, types.Message{
			Role:    types.ConversationRole(m.Role),
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(b.modelID),
		Messages: messages,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(req.MaxTokens),
			Temperature: aws.Float32(req.Temperature),
		},
	}
	if req.System != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.System}}
	}
	return input
}

func converseText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	return sb.String()
}

func classifyBedrockError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("bedrock converse: %w", err)
	}

	kind := ErrUpstream
	switch apiErr.ErrorCode() {
	case "AccessDeniedException", "UnauthorizedOperation":
		kind = ErrAccessDenied
	case "ValidationException":
		kind = ErrValidation
	}
	return &UpstreamError{
		Provider: bedrockName,
		Kind:     kind,
		Code:     apiErr.ErrorCode(),
		Message:  apiErr.ErrorMessage(),
		Err:      err,
	}
}
