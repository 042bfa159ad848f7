package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// manages HTTP requests to the server REST API
type APIClient struct {
	endpoint   string
	httpClient *http.Client
}

// StatusResponse mirrors GET /api/v1/status
type StatusResponse struct {
	Connected bool   `json:"connected"`
	Provider  string `json:"provider"`
	BaseURL   string `json:"base_url"`
}

type modelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// creates a new REST client for the server at serverURL
func NewAPIClient(serverURL string) *APIClient {
	return &APIClient{
		endpoint: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// reports whether the server can reach its generation service
func (c *APIClient) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.get(ctx, "/api/v1/status", &out)
	return out, err
}

// lists the model names the generation service offers
func (c *APIClient) Models(ctx context.Context) ([]string, error) {
	var out modelsResponse
	if err := c.get(ctx, "/api/v1/models", &out); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}

	return names, nil
}

// returns a tea.Cmd that probes the server and lists its models
func (c *APIClient) StatusCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		status, err := c.Status(ctx)
		if err != nil {
			return ErrorMsg{err: err}
		}

		models, err := c.Models(ctx)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return StatusMsg{status: status, models: models}
	}
}

func (c *APIClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorPayload
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
		}

		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
