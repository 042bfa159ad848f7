package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// longest NDJSON line accepted from the stream
const maxStreamLineSize = 1024 * 1024

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type ollamaTagsResponse struct {
	Models []Model `json:"models"`
}

type OllamaClient struct {
	config     Config
	httpClient *http.Client
	limiter    interface{ Wait(context.Context) error }
}

func NewOllamaClient(config Config) *OllamaClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOllamaURL
	}

	if config.Model == "" {
		config.Model = DefaultModel
	}

	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}

	if config.TopP == 0 {
		config.TopP = DefaultTopP
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &OllamaClient{
		config:     config,
		httpClient: sharedHTTPClient,
		limiter:    sharedRateLimiter,
	}
}

// joins the system prompt and the user request into a single prompt
func ComposePrompt(systemPrompt, prompt string) string {
	if systemPrompt == "" {
		return prompt
	}

	return systemPrompt + "\n\nUser Request: " + prompt
}

func (c *OllamaClient) Provider() Provider {
	return ProviderOllama
}

func (c *OllamaClient) BaseURL() string {
	return c.config.BaseURL
}

func (c *OllamaClient) CheckAvailability(ctx context.Context) bool {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return false
	}

	defer resp.Body.Close() //nolint:errcheck

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *OllamaClient) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := c.get(ctx, "/api/tags")
	if err != nil {
		return nil, &ConnectivityError{Op: "list models", Err: err}
	}

	defer resp.Body.Close() //nolint:errcheck

	if err := checkStatus("list models", resp); err != nil {
		return nil, err
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if tags.Models == nil {
		return []Model{}, nil
	}

	return tags.Models, nil
}

func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.generate(ctx, req, false)
	if err != nil {
		return "", err
	}

	defer resp.Body.Close() //nolint:errcheck

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if out.Error != "" {
		return "", &StreamError{Message: out.Error}
	}

	return out.Response, nil
}

func (c *OllamaClient) StreamGenerate(ctx context.Context, req Request, onFragment func(string)) error {
	resp, err := c.generate(ctx, req, true)
	if err != nil {
		return err
	}

	defer resp.Body.Close() //nolint:errcheck

	return readStream(ctx, resp.Body, onFragment)
}

// reads NDJSON lines, forwarding non-empty fragments in order.
// lines that are not valid JSON are skipped
func readStream(ctx context.Context, body io.Reader, onFragment func(string)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk ollamaGenerateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}

		if chunk.Error != "" {
			return &StreamError{Message: chunk.Error}
		}

		if chunk.Response != "" && onFragment != nil {
			onFragment(chunk.Response)
		}

		if chunk.Done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("failed to read stream: %w", err)
	}

	return ctx.Err()
}

func (c *OllamaClient) generate(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	req = c.config.apply(req)

	reqBody := ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: ComposePrompt(req.SystemPrompt, req.Prompt),
		Stream: stream,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			MaxTokens:   req.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	// rate limiting
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, &ConnectivityError{Op: "generate", Err: err}
	}

	if err := checkStatus("generate", resp); err != nil {
		resp.Body.Close() //nolint:errcheck
		return nil, err
	}

	return resp, nil
}

func (c *OllamaClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return c.httpClient.Do(req)
}

// turns non-2xx responses into a ConnectivityError
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	return &ConnectivityError{
		Op:     op,
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}
