package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// generation client for any OpenAI-compatible endpoint
type OpenAIClient struct {
	config Config
	client *openai.Client
}

func NewOpenAIClient(config Config) *OpenAIClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOpenAIURL
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

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.BaseURL
	clientConfig.HTTPClient = sharedHTTPClient

	return &OpenAIClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

func (c *OpenAIClient) BaseURL() string {
	return c.config.BaseURL
}

func (c *OpenAIClient) CheckAvailability(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	return err == nil
}

func (c *OpenAIClient) ListModels(ctx context.Context) ([]Model, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, connectivity("list models", err)
	}

	models := make([]Model, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, Model{Name: m.ID})
	}

	return models, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	if err := sharedRateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, c.chatRequest(req, false))
	if err != nil {
		return "", connectivity("generate", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) StreamGenerate(ctx context.Context, req Request, onFragment func(string)) error {
	if err := sharedRateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, c.chatRequest(req, true))
	if err != nil {
		return connectivity("generate", err)
	}

	defer stream.Close() //nolint:errcheck

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return connectivity("generate", err)
		}

		for _, choice := range resp.Choices {
			if choice.Delta.Content != "" && onFragment != nil {
				onFragment(choice.Delta.Content)
			}
		}
	}
}

func (c *OpenAIClient) chatRequest(req Request, stream bool) openai.ChatCompletionRequest {
	req = c.config.apply(req)

	messages := make([]openai.ChatCompletionMessage, 0, 2)

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
		Stream:      stream,
	}
}

// maps go-openai errors onto ConnectivityError, leaving context errors alone
func connectivity(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ConnectivityError{Op: op, Status: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ConnectivityError{Op: op, Status: reqErr.HTTPStatusCode, Err: err}
	}

	return &ConnectivityError{Op: op, Err: err}
}
