package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/forgeui/server/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clears every variable the loader reads
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ENVIRONMENT", "PORT", "LOG_LEVEL", "LLM_PROVIDER", "OLLAMA_BASE_URL",
		"OPENAI_BASE_URL", "OPENAI_API_KEY", "DEFAULT_MODEL", "DEFAULT_TEMPERATURE",
		"DEFAULT_TOP_P", "MAX_TOKENS", "GENERATION_TIMEOUT", "SANDBOX_TIMEOUT",
		"SESSION_TTL", "RATE_LIMIT", "ALLOWED_ORIGINS", "FORGEUI_SERVER_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_MODEL", "codellama:7b")
	t.Setenv("DEFAULT_TEMPERATURE", "0.3")
	t.Setenv("SANDBOX_TIMEOUT", "500ms")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "codellama:7b", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.SandboxTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "forgeui.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7000"
llm:
  provider: openai
  openai_base_url: http://localhost:1234/v1
  model: local-model
generation_timeout: 30s
`), 0o600))

	t.Setenv("PORT", "7100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LLM.OpenAIURL)
	assert.Equal(t, "local-model", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"provider", "LLM_PROVIDER", "anthropic"},
		{"temperature range", "DEFAULT_TEMPERATURE", "1.5"},
		{"temperature number", "DEFAULT_TEMPERATURE", "warm"},
		{"max tokens", "MAX_TOKENS", "lots"},
		{"duration", "SANDBOX_TIMEOUT", "2"},
		{"openai key", "LLM_PROVIDER", "openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseServerFlags(t *testing.T) {
	flags, err := ParseServerFlags([]string{"--config", "forgeui.yaml", "--port", "9000"})
	require.NoError(t, err)
	assert.Equal(t, Flags{ConfigPath: "forgeui.yaml", Port: "9000"}, flags)

	_, err = ParseServerFlags([]string{"--unknown"})
	assert.Error(t, err)
}

func TestClientConfig(t *testing.T) {
	cfg := Default()

	client := cfg.ClientConfig()
	assert.Equal(t, llm.ProviderOllama, client.Provider)
	assert.Equal(t, "http://localhost:11434", client.BaseURL)
	assert.Equal(t, "llama3.1:latest", client.Model)

	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIURL = "http://localhost:1234/v1"
	cfg.LLM.OpenAIKey = "sk-test"

	client = cfg.ClientConfig()
	assert.Equal(t, llm.ProviderOpenAI, client.Provider)
	assert.Equal(t, "http://localhost:1234/v1", client.BaseURL)
	assert.Equal(t, "sk-test", client.APIKey)
}
