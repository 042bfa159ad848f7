package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOpenAIURL   = "https://api.openai.com/v1"
	DefaultModel       = "llama3.1:latest"
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultMaxTokens   = 2000
)

// loads client configuration from environment variables
func loadConfig() (*Config, error) {
	provider := Provider(strings.ToLower(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		provider = ProviderOllama // default
	}

	cfg := &Config{
		Provider:    provider,
		Model:       os.Getenv("DEFAULT_MODEL"),
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}

	switch provider {
	case ProviderOllama:
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	case ProviderOpenAI:
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")

		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	if tempStr := os.Getenv("DEFAULT_TEMPERATURE"); tempStr != "" {
		if val, err := strconv.ParseFloat(tempStr, 64); err == nil {
			cfg.Temperature = val
		}
	}

	if topPStr := os.Getenv("DEFAULT_TOP_P"); topPStr != "" {
		if val, err := strconv.ParseFloat(topPStr, 64); err == nil {
			cfg.TopP = val
		}
	}

	if maxTokensStr := os.Getenv("MAX_TOKENS"); maxTokensStr != "" {
		if val, err := strconv.Atoi(maxTokensStr); err == nil {
			cfg.MaxTokens = val
		}
	}

	return cfg, nil
}

// fills zero request fields from the client configuration
func (c Config) apply(req Request) Request {
	if req.Model == "" {
		req.Model = c.Model
	}

	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}

	if req.TopP == 0 {
		req.TopP = c.TopP
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}

	return req
}
