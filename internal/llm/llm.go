package llm

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// shared HTTP client for generation service calls. no overall timeout,
// streams are bounded by the request context
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	},
}

// rate limiter for outgoing generation requests (10 requests/second with burst capacity of 5)
var sharedRateLimiter = rate.NewLimiter(10, 5)

// creates a new client with auto-configuration from environment variables
func NewClient() (Client, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	return NewClientWithConfig(config)
}

// creates a new client with explicit configuration
func NewClientWithConfig(config *Config) (Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch config.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(*config), nil
	case ProviderOpenAI:
		return NewOpenAIClient(*config), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
