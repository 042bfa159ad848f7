package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIClient(Config{BaseURL: server.URL + "/v1", APIKey: "test-key", Model: "gpt-4o-mini"})
}

func TestOpenAIListModels(t *testing.T) {
	client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"object":"list","data":[{"id":"gpt-4o-mini","object":"model"}]}`)
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Model{{Name: "gpt-4o-mini"}}, models)
}

func TestOpenAIStreamGenerate(t *testing.T) {
	var body map[string]any

	client := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"<p>\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Hi</p>\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var fragments []string

	err := client.StreamGenerate(context.Background(), Request{SystemPrompt: "sys", Prompt: "hello"}, func(fragment string) {
		fragments = append(fragments, fragment)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"<p>", "Hi</p>"}, fragments)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, true, body["stream"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "hello", messages[1].(map[string]any)["content"])
}

func TestOpenAIErrorStatus(t *testing.T) {
	client := newOpenAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	})

	_, err := client.Generate(context.Background(), Request{Prompt: "x"})

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, http.StatusUnauthorized, connErr.Status)
	assert.False(t, client.CheckAvailability(context.Background()))
}

func TestNewClientWithConfig(t *testing.T) {
	client, err := NewClientWithConfig(&Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, client.Provider())
	assert.Equal(t, DefaultOllamaURL, client.BaseURL())

	client, err = NewClientWithConfig(&Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, client.Provider())

	_, err = NewClientWithConfig(&Config{Provider: "anthropic"})
	assert.Error(t, err)

	_, err = NewClientWithConfig(nil)
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")
	t.Setenv("DEFAULT_MODEL", "codellama:7b")
	t.Setenv("DEFAULT_TEMPERATURE", "0.4")
	t.Setenv("MAX_TOKENS", "not-a-number")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "http://ollama:11434", cfg.BaseURL)
	assert.Equal(t, "codellama:7b", cfg.Model)
	assert.InDelta(t, 0.4, cfg.Temperature, 1e-9)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)

	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err = loadConfig()
	assert.Error(t, err)
}
