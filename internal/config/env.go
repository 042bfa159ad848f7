package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"codeberg.org/forgeui/server/internal/llm"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Environment: "development",
		Port:        "8080",
		LLM: LLMConfig{
			Provider:    "ollama",
			OllamaURL:   "http://localhost:11434",
			Model:       "llama3.1:latest",
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   2000,
		},
		GenerationTimeout: 120 * time.Second,
		SandboxTimeout:    2 * time.Second,
		SessionTTL:        2 * time.Hour,
		RateLimit:         "20-M",
		ServerURL:         "http://localhost:8080",
	}
}

// loads configuration from the .env file, the optional YAML file named by
// FORGEUI_CONFIG and environment variables, in increasing precedence
func LoadEnvironmentVariables() (*Config, error) {
	return Load(os.Getenv("FORGEUI_CONFIG"))
}

// loads configuration with an explicit YAML file path (may be empty)
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Environment, "ENVIRONMENT")
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.OllamaURL, "OLLAMA_BASE_URL")
	setString(&cfg.LLM.OpenAIURL, "OPENAI_BASE_URL")
	setString(&cfg.LLM.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.Model, "DEFAULT_MODEL")
	setString(&cfg.RateLimit, "RATE_LIMIT")
	setString(&cfg.ServerURL, "FORGEUI_SERVER_URL")

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if err := setFloat(&cfg.LLM.Temperature, "DEFAULT_TEMPERATURE"); err != nil {
		return err
	}

	if err := setFloat(&cfg.LLM.TopP, "DEFAULT_TOP_P"); err != nil {
		return err
	}

	if maxTokensStr := os.Getenv("MAX_TOKENS"); maxTokensStr != "" {
		val, err := strconv.Atoi(maxTokensStr)
		if err != nil {
			return fmt.Errorf("MAX_TOKENS must be an integer: %w", err)
		}

		cfg.LLM.MaxTokens = val
	}

	if err := setDuration(&cfg.GenerationTimeout, "GENERATION_TIMEOUT"); err != nil {
		return err
	}

	if err := setDuration(&cfg.SandboxTimeout, "SANDBOX_TIMEOUT"); err != nil {
		return err
	}

	return setDuration(&cfg.SessionTTL, "SESSION_TTL")
}

// checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "ollama":
		if c.LLM.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL environment variable is required")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" && c.LLM.OpenAIURL == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %q", c.LLM.Provider)
	}

	if c.LLM.Temperature < 0.1 || c.LLM.Temperature > 1.0 {
		return fmt.Errorf("DEFAULT_TEMPERATURE must be between 0.1 and 1.0")
	}

	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive")
	}

	if c.GenerationTimeout <= 0 || c.SandboxTimeout <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	if c.Port == "" {
		return fmt.Errorf("PORT environment variable is required")
	}

	return nil
}

// reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setFloat(dst *float64, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s must be a number: %w", key, err)
	}

	*dst = val
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s must be a duration: %w", key, err)
	}

	*dst = val
	return nil
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// returns the generation service client configuration
func (c *Config) ClientConfig() *llm.Config {
	baseURL := c.LLM.OllamaURL
	if llm.Provider(c.LLM.Provider) == llm.ProviderOpenAI {
		baseURL = c.LLM.OpenAIURL
	}

	return &llm.Config{
		Provider:    llm.Provider(c.LLM.Provider),
		BaseURL:     baseURL,
		APIKey:      c.LLM.OpenAIKey,
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		TopP:        c.LLM.TopP,
		MaxTokens:   c.LLM.MaxTokens,
	}
}
