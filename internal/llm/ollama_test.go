package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaServer(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOllamaClient(Config{BaseURL: server.URL})
}

func TestOllamaListModels(t *testing.T) {
	client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[{"name":"llama3.1:latest"},{"name":"codellama:7b"}]}`)
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)

	require.Len(t, models, 2)
	assert.Equal(t, "llama3.1:latest", models[0].Name)
	assert.Equal(t, "codellama:7b", models[1].Name)
	assert.True(t, client.CheckAvailability(context.Background()))
}

func TestOllamaListModelsEmpty(t *testing.T) {
	client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.NotNil(t, models)
}

func TestOllamaUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewOllamaClient(Config{BaseURL: server.URL})

	assert.False(t, client.CheckAvailability(context.Background()))

	_, err := client.ListModels(context.Background())

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "list models", connErr.Op)

	err = client.StreamGenerate(context.Background(), Request{Prompt: "x"}, nil)
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "generate", connErr.Op)
}

func TestOllamaNon2xxIsConnectivityError(t *testing.T) {
	client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	err := client.StreamGenerate(context.Background(), Request{Prompt: "x"}, func(string) {
		t.Fatal("no fragments expected")
	})

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, http.StatusInternalServerError, connErr.Status)
	assert.Contains(t, connErr.Error(), "model not loaded")
	assert.False(t, client.CheckAvailability(context.Background()))
}

func TestOllamaStreamGenerate(t *testing.T) {
	var got ollamaGenerateRequest

	client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		fmt.Fprintln(w, `{"response":"const ","done":false}`)
		fmt.Fprintln(w, `this is not json`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"response":"","done":false}`)
		fmt.Fprintln(w, `{"response":"Card","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true}`)
		fmt.Fprintln(w, `{"response":"ignored","done":false}`)
	})

	var fragments []string

	err := client.StreamGenerate(context.Background(), Request{
		SystemPrompt: "You are a UI developer.",
		Prompt:       "a pricing card",
	}, func(fragment string) {
		fragments = append(fragments, fragment)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"const ", "Card"}, fragments)
	assert.Equal(t, DefaultModel, got.Model)
	assert.True(t, got.Stream)
	assert.Equal(t, "You are a UI developer.\n\nUser Request: a pricing card", got.Prompt)
	assert.InDelta(t, DefaultTemperature, got.Options.Temperature, 1e-9)
	assert.InDelta(t, DefaultTopP, got.Options.TopP, 1e-9)
	assert.Equal(t, DefaultMaxTokens, got.Options.MaxTokens)
}

func TestOllamaStreamEndsOnClose(t *testing.T) {
	client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"response":"a"}`+"\n"+`{"response":"b"}`)
	})

	var text strings.Builder

	err := client.StreamGenerate(context.Background(), Request{Prompt: "x"}, func(fragment string) {
		text.WriteString(fragment)
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", text.String())
}

func TestOllamaStreamErrorLine(t *testing.T) {
	client := newOllamaServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, `{"response":"partial"}`)
		fmt.Fprintln(w, `{"error":"model 'nope' not found"}`)
	})

	err := client.StreamGenerate(context.Background(), Request{Prompt: "x", Model: "nope"}, nil)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "model 'nope' not found", streamErr.Message)
}

func TestOllamaGenerate(t *testing.T) {
	var got ollamaGenerateRequest

	client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"response":"<div>ok</div>","done":true}`)
	})

	text, err := client.Generate(context.Background(), Request{Prompt: "restyle", Temperature: 0.5, Model: "codellama:7b"})
	require.NoError(t, err)

	assert.Equal(t, "<div>ok</div>", text)
	assert.False(t, got.Stream)
	assert.Equal(t, "restyle", got.Prompt)
	assert.Equal(t, "codellama:7b", got.Model)
	assert.InDelta(t, 0.5, got.Options.Temperature, 1e-9)
}

func TestOllamaStreamCancelled(t *testing.T) {
	release := make(chan struct{})

	client := newOllamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"first"}`)
		w.(http.Flusher).Flush()

		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())

	err := client.StreamGenerate(ctx, Request{Prompt: "x"}, func(string) {
		cancel()
	})

	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t, "only", ComposePrompt("", "only"))
	assert.Equal(t, "sys\n\nUser Request: req", ComposePrompt("sys", "req"))
}
