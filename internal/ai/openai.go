package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
)

// OpenAIOptions configures an OpenAIClient.
// Setting AzureEndpoint targets an Azure OpenAI deployment, in which case
// Model is the deployment name.
type OpenAIOptions struct {
	APIKey        string
	Model         string
	BaseURL       string
	AzureEndpoint string
	APIVersion    string
	Timeout       time.Duration
}

// OpenAIClient invokes OpenAI or Azure OpenAI chat completions
type OpenAIClient struct {
	client   *openai.Client
	model    string
	provider string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewOpenAIClient creates a chat completion invoker with SDK retries disabled.
// Missing credentials are reported per call rather than here.
func NewOpenAIClient(opts OpenAIOptions, logger *zap.Logger) *OpenAIClient {
	c := &OpenAIClient{
		model:    opts.Model,
		provider: "openai",
		timeout:  opts.Timeout,
		logger:   logger,
	}
	if opts.AzureEndpoint != "" {
		c.provider = "azure-openai"
	}

	if opts.APIKey == "" || c.model == "" {
		logger.Warn("OpenAI credentials are not configured, AI operations will fail",
			zap.String("provider", c.provider),
		)
		return c
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if opts.AzureEndpoint != "" {
		reqOpts = append(reqOpts,
			azure.WithEndpoint(opts.AzureEndpoint, opts.APIVersion),
			azure.WithAPIKey(opts.APIKey),
		)
	} else {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
		if opts.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
		}
	}

	client := openai.NewClient(reqOpts...)
	c.client = &client

	return c
}

// Invoke performs a single chat completion request
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", missingCredential(c.provider)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	for _, m := range req.History {
		if m.Role == model.ChatRoleModel {
			messages = append(messages, openai.AssistantMessage(m.Text))
		} else {
			messages = append(messages, openai.UserMessage(m.Text))
		}
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}

	if req.Contract != nil {
		schema, err := req.Contract.JSONSchema()
		if err != nil {
			return "", unsupportedContract(c.provider, req.Contract.Name, err)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Contract.Name,
					Description: openai.String(req.Contract.Description),
					Schema:      schema,
				},
			},
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestStart := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	requestTime := time.Since(requestStart)
	if err != nil {
		err = c.classify(err)
		c.logger.Error("chat completion request failed",
			zap.String("provider", c.provider),
			zap.String("slot", string(req.Slot)),
			zap.Duration("request_time", requestTime),
			zap.Error(err),
		)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: c.provider, Reason: "no choices returned"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		reason := "empty content"
		if resp.Choices[0].Message.Refusal != "" {
			reason = "refusal: " + resp.Choices[0].Message.Refusal
		}
		return "", &ProviderError{Provider: c.provider, Reason: reason}
	}

	c.logger.Info("chat completion request completed",
		zap.String("provider", c.provider),
		zap.String("slot", string(req.Slot)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", requestTime),
	)

	return content, nil
}

func (c *OpenAIClient) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(c.provider, apiErr.StatusCode, err)
	}
	return &TransportError{Provider: c.provider, Err: fmt.Errorf("chat completion request failed: %w", err)}
}
