package main

import (
	"fmt"

	"codeberg.org/forgeui/server/internal/config"
	"codeberg.org/forgeui/server/internal/generator"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/sandbox"
)

// creates and configures all service clients
func InitializeServices(cfg *config.Config) (*Services, error) {
	llmClient, err := llm.NewClientWithConfig(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := sandbox.DefaultOptions()
	opts.Timeout = cfg.SandboxTimeout

	router := preview.NewRouter(sandbox.NewCompiler(opts))

	return &Services{
		LLM:       llmClient,
		Generator: generator.New(llmClient, router, cfg.LLM.Model),
	}, nil
}
