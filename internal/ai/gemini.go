package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const providerGemini = "gemini"

// GeminiOptions configures a GeminiClient
type GeminiOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiClient invokes Google Gemini models through the genai SDK
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGeminiClient creates a Gemini invoker.
// An empty API key yields a client whose every call fails with a ConfigurationError.
func NewGeminiClient(ctx context.Context, opts GeminiOptions, logger *zap.Logger) (*GeminiClient, error) {
	c := &GeminiClient{
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  logger,
	}

	if opts.APIKey == "" {
		logger.Warn("Gemini API key is not configured, AI operations will fail")
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client

	return c, nil
}

// Invoke sends a single GenerateContent request
func (c *GeminiClient) Invoke(ctx context.Context, req Request) (string, error) {
	if c.client == nil {
		return "", missingCredential(providerGemini)
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if req.Contract != nil {
		schema, err := toGeminiSchema(req.Contract.Schema)
		if err != nil {
			return "", unsupportedContract(providerGemini, req.Contract.Name, err)
		}
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = schema
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		contents = append(contents, genai.NewContentFromText(m.Text, geminiRole(m)))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	elapsed := time.Since(start)
	if err != nil {
		err = c.classify(err)
		c.logger.Error("Gemini request failed",
			zap.String("slot", string(req.Slot)),
			zap.String("model", c.model),
			zap.Duration("processing_time", elapsed),
			zap.Error(err),
		)
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := "empty response"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			reason = "finish reason " + string(resp.Candidates[0].FinishReason)
		}
		c.logger.Warn("Gemini returned no text",
			zap.String("slot", string(req.Slot)),
			zap.String("reason", reason),
		)
		return "", &ProviderError{Provider: providerGemini, Reason: reason}
	}

	c.logger.Info("Gemini request completed",
		zap.String("slot", string(req.Slot)),
		zap.String("model", c.model),
		zap.Duration("processing_time", elapsed),
	)

	return text, nil
}

func (c *GeminiClient) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(providerGemini, apiErr.Code, err)
	}
	return &TransportError{Provider: providerGemini, Err: err}
}

func geminiRole(m Message) genai.Role {
	if m.Role == model.ChatRoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
