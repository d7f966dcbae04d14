package ai

import (
	"context"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/ova-health/backend/internal/config"
	"github.com/vcscsvcscs/ova-health/backend/internal/contract"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func TestNewInvoker_SelectsProvider(t *testing.T) {
	base := config.AIConfig{
		Timeout: time.Second,
		Gemini:  config.GeminiConfig{APIKey: "g", Model: "gemini-2.5-flash"},
		OpenAI:  config.OpenAIConfig{APIKey: "o", Model: "gpt-4o-mini"},
		Azure:   config.AzureOpenAIConfig{APIKey: "a", Endpoint: "https://x.openai.azure.com", Deployment: "gpt-4o", APIVersion: "2024-08-01-preview"},
	}

	tests := []struct {
		provider string
		check    func(t *testing.T, inv Invoker)
		wantErr  bool
	}{
		{
			provider: config.ProviderGemini,
			check: func(t *testing.T, inv Invoker) {
				assert.IsType(t, &GeminiClient{}, inv)
			},
		},
		{
			provider: config.ProviderOpenAI,
			check: func(t *testing.T, inv Invoker) {
				require.IsType(t, &OpenAIClient{}, inv)
				assert.Equal(t, "openai", inv.(*OpenAIClient).provider)
			},
		},
		{
			provider: config.ProviderAzure,
			check: func(t *testing.T, inv Invoker) {
				require.IsType(t, &OpenAIClient{}, inv)
				assert.Equal(t, "azure-openai", inv.(*OpenAIClient).provider)
				assert.Equal(t, "gpt-4o", inv.(*OpenAIClient).model)
			},
		},
		{provider: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := base
			cfg.Provider = tt.provider
			inv, err := NewInvoker(context.Background(), cfg, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, inv)
		})
	}
}

func TestToGeminiSchema(t *testing.T) {
	s, err := toGeminiSchema(contract.Assessment.Schema)
	require.NoError(t, err)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"riskScore", "riskLevel", "summary", "recommendations", "doctorReportSummary"}, s.PropertyOrdering)
	assert.Equal(t, genai.TypeInteger, s.Properties["riskScore"].Type)
	require.NotNil(t, s.Properties["riskScore"].Maximum)
	assert.Equal(t, float64(100), *s.Properties["riskScore"].Maximum)
	assert.Equal(t, []string{"Low", "Moderate", "High"}, s.Properties["riskLevel"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["recommendations"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["recommendations"].Items.Type)

	w, err := toGeminiSchema(contract.Workout.Schema)
	require.NoError(t, err)
	assert.Equal(t, genai.TypeObject, w.Properties["exercises"].Items.Type)
	assert.ElementsMatch(t, []string{"name", "duration", "intensity"}, w.Properties["exercises"].Items.Required)
}

func TestToGeminiSchema_RejectsUntypedSchema(t *testing.T) {
	_, err := toGeminiSchema(&openapi3.Schema{})
	assert.Error(t, err)

	_, err = toGeminiSchema(openapi3.NewIntegerSchema().WithEnum(1, 2))
	assert.Error(t, err)
}
