package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM implements llm.Client with a fixed model list
type fakeLLM struct {
	models []llm.Model
	err    error
}

func (f *fakeLLM) CheckAvailability(context.Context) bool { return f.err == nil }

func (f *fakeLLM) ListModels(context.Context) ([]llm.Model, error) { return f.models, f.err }

func (f *fakeLLM) StreamGenerate(context.Context, llm.Request, func(string)) error { return f.err }

func (f *fakeLLM) Generate(context.Context, llm.Request) (string, error) { return "", f.err }

func (f *fakeLLM) Provider() llm.Provider { return llm.ProviderOllama }

func (f *fakeLLM) BaseURL() string { return llm.DefaultOllamaURL }

func get(t *testing.T, client llm.Client, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), client)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	return w
}

func TestModels(t *testing.T) {
	client := &fakeLLM{models: []llm.Model{
		{Name: "llama3.1:latest", Size: 4920753328, ModifiedAt: "2024-08-01T10:00:00Z"},
		{Name: "codellama:7b"},
	}}

	var resp ModelsResponse
	require.NoError(t, json.Unmarshal(get(t, client, "/api/v1/models").Body.Bytes(), &resp))

	assert.Equal(t, []ModelInfo{
		{Name: "llama3.1:latest", Size: 4920753328, ModifiedAt: "2024-08-01T10:00:00Z"},
		{Name: "codellama:7b"},
	}, resp.Models)
}

func TestModelsUnreachable(t *testing.T) {
	client := &fakeLLM{err: errors.New("connection refused")}

	w := get(t, client, "/api/v1/models")
	assert.JSONEq(t, `{"models":[]}`, w.Body.String())
}

func TestTechnologies(t *testing.T) {
	var resp TechnologiesResponse
	require.NoError(t, json.Unmarshal(get(t, &fakeLLM{}, "/api/v1/technologies").Body.Bytes(), &resp))

	assert.Equal(t, technology.All(), resp.Technologies)
	assert.Equal(t, technology.React, resp.Default)
}

func TestExamples(t *testing.T) {
	var resp ExamplesResponse
	require.NoError(t, json.Unmarshal(get(t, &fakeLLM{}, "/api/v1/examples").Body.Bytes(), &resp))

	assert.Equal(t, generator.Examples(), resp.Examples)
}
