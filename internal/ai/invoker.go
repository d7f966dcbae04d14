package ai

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/ova-health/backend/internal/config"
	"github.com/vcscsvcscs/ova-health/backend/internal/contract"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
)

// Message is one prior turn of a multi-turn exchange
type Message struct {
	Role model.ChatRole
	Text string
}

// Request is a provider-neutral model request.
// When Contract is set the model is asked for JSON matching its schema.
type Request struct {
	Slot              model.Slot
	SystemInstruction string
	Prompt            string
	History           []Message
	Contract          *contract.Contract
}

// Invoker sends a request to a generative model and returns its raw text output.
// Implementations do not retry and do not guard against concurrent calls on the
// same slot; callers serialize per slot.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// NewInvoker builds the invoker for the configured provider
func NewInvoker(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (Invoker, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, GeminiOptions{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
			Timeout: cfg.Timeout,
		}, logger)
	case config.ProviderOpenAI:
		return NewOpenAIClient(OpenAIOptions{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Timeout,
		}, logger), nil
	case config.ProviderAzure:
		return NewOpenAIClient(OpenAIOptions{
			APIKey:        cfg.Azure.APIKey,
			Model:         cfg.Azure.Deployment,
			AzureEndpoint: cfg.Azure.Endpoint,
			APIVersion:    cfg.Azure.APIVersion,
			Timeout:       cfg.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
