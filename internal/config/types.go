package config

import "time"

type Config struct {
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`
	LogLevel    string `yaml:"log_level"`

	LLM LLMConfig `yaml:"llm"`

	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	SandboxTimeout    time.Duration `yaml:"sandbox_timeout"`
	SessionTTL        time.Duration `yaml:"session_ttl"`

	// per-IP limit for generate and restyle, in ulule format (e.g. "20-M")
	RateLimit      string   `yaml:"rate_limit"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// base URL clients use to reach the server
	ServerURL string `yaml:"server_url"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	OllamaURL   string  `yaml:"ollama_base_url"`
	OpenAIURL   string  `yaml:"openai_base_url"`
	OpenAIKey   string  `yaml:"openai_api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type Flags struct {
	ConfigPath string
	Port       string
}
