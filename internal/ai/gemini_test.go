package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/ova-health/backend/internal/contract"
	"github.com/vcscsvcscs/ova-health/backend/pkg/model"
	"go.uber.org/zap"
)

func geminiReply(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
	return string(body)
}

func newTestGemini(t *testing.T, baseURL string, timeout time.Duration) *GeminiClient {
	t.Helper()
	c, err := NewGeminiClient(context.Background(), GeminiOptions{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		BaseURL: baseURL,
		Timeout: timeout,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestGeminiClient_InvokeWithContract(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geminiReply(`{"focus":"f","exercises":[]}`))
	}))
	defer srv.Close()

	c := newTestGemini(t, srv.URL, 5*time.Second)
	out, err := c.Invoke(context.Background(), Request{
		Slot:     model.SlotWorkout,
		Prompt:   "Create a plan",
		Contract: contract.Workout,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"focus":"f","exercises":[]}`, out)

	genCfg, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig must be sent")
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	schema, ok := genCfg["responseSchema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "OBJECT", schema["type"])
}

func TestGeminiClient_InvokeChatHistory(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, geminiReply("Hello there"))
	}))
	defer srv.Close()

	c := newTestGemini(t, srv.URL, 5*time.Second)
	out, err := c.Invoke(context.Background(), Request{
		Slot:              model.SlotChat,
		SystemInstruction: "You are a mentor",
		History: []Message{
			{Role: model.ChatRoleModel, Text: "Hi, how can I help?"},
			{Role: model.ChatRoleUser, Text: "What is PCOS?"},
		},
		Prompt: "Is it common?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)

	contents, ok := captured["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 3)

	roles := make([]string, 0, len(contents))
	for _, c := range contents {
		roles = append(roles, c.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"model", "user", "user"}, roles)
	assert.Contains(t, captured, "systemInstruction")
	if genCfg, ok := captured["generationConfig"].(map[string]any); ok {
		assert.NotContains(t, genCfg, "responseSchema")
	}
}

func TestGeminiClient_MissingKeyMakesNoNetworkCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), GeminiOptions{
		Model:   "gemini-2.5-flash",
		BaseURL: srv.URL,
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), Request{Slot: model.SlotChat, Prompt: "hi"})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "gemini", cfgErr.Provider)
	assert.Zero(t, hits.Load())
}

func TestGeminiClient_UnsupportedContract(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestGemini(t, srv.URL, 5*time.Second)
	_, err := c.Invoke(context.Background(), Request{
		Prompt:   "Analyze",
		Contract: &contract.Contract{Name: "untyped", Schema: &openapi3.Schema{}},
	})

	var target *ProviderError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, providerGemini, target.Provider)
	assert.Contains(t, target.Error(), "untyped")
	assert.Error(t, errors.Unwrap(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestGeminiClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "rejected key",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
			},
			check: func(t *testing.T, err error) {
				var target *ConfigurationError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`)
			},
			check: func(t *testing.T, err error) {
				var target *TransportError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"candidates":[]}`)
			},
			check: func(t *testing.T, err error) {
				var target *ProviderError
				assert.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestGemini(t, srv.URL, 5*time.Second).Invoke(context.Background(), Request{Prompt: "hi"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGeminiClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestGemini(t, srv.URL, 50*time.Millisecond).Invoke(context.Background(), Request{Prompt: "hi"})

	var target *TransportError
	require.ErrorAs(t, err, &target)
	assert.True(t, target.Timeout())
}
