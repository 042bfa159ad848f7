package llm

import (
	"context"
	"fmt"
)

// represents different LLM providers
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// generation service the pipeline streams code from
type Client interface {
	// reports whether the service answers at all
	CheckAvailability(ctx context.Context) bool
	ListModels(ctx context.Context) ([]Model, error)
	// calls onFragment with each non-empty fragment in arrival order
	StreamGenerate(ctx context.Context, req Request, onFragment func(string)) error
	Generate(ctx context.Context, req Request) (string, error)
	Provider() Provider
	BaseURL() string
}

// a single generation request, immutable once dispatched
type Request struct {
	Model        string
	SystemPrompt string
	Prompt       string
	Temperature  float64
	TopP         float64
	MaxTokens    int
}

// model advertised by the generation service
type Model struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

// holds configuration for client initialization
type Config struct {
	Provider    Provider
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// the generation service could not be reached or answered with a
// non-2xx status
type ConnectivityError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *ConnectivityError) Error() string {
	if e.Status != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s: API request failed with status %d: %s", e.Op, e.Status, e.Body)
		}

		return fmt.Sprintf("%s: API request failed with status %d", e.Op, e.Status)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op + ": generation service unavailable"
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// the generation service reported an error inside the stream
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "generation failed: " + e.Message
}
