package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/forgeui/server/internal/llm"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM implements llm.Client reporting a fixed availability
type fakeLLM struct {
	available bool
}

func (f *fakeLLM) CheckAvailability(context.Context) bool { return f.available }

func (f *fakeLLM) ListModels(context.Context) ([]llm.Model, error) { return nil, nil }

func (f *fakeLLM) StreamGenerate(context.Context, llm.Request, func(string)) error { return nil }

func (f *fakeLLM) Generate(context.Context, llm.Request) (string, error) { return "", nil }

func (f *fakeLLM) Provider() llm.Provider { return llm.ProviderOllama }

func (f *fakeLLM) BaseURL() string { return llm.DefaultOllamaURL }

func newTestRouter(client llm.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/health", Handler)
	RegisterRoutes(router.Group("/api/v1"), client)

	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(newTestRouter(&fakeLLM{}), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "forgeui", resp.Service)
}

func TestPing(t *testing.T) {
	w := get(newTestRouter(&fakeLLM{}), "/api/v1/ping")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestStatus(t *testing.T) {
	for _, available := range []bool{true, false} {
		w := get(newTestRouter(&fakeLLM{available: available}), "/api/v1/status")
		require.Equal(t, http.StatusOK, w.Code)

		var resp StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, StatusResponse{
			Connected: available,
			Provider:  "ollama",
			BaseURL:   llm.DefaultOllamaURL,
		}, resp)
	}
}
