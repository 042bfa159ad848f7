package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/forgeui/server/internal/config"
	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/preview"
	"codeberg.org/forgeui/server/internal/sandbox"
	"github.com/spf13/cobra"
)

// holds the streams and factories shared by every command
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// builds the generation client; replaced in tests
	NewClient func(*llm.Config) (llm.Client, error)

	configPath string
	cfg        *config.Config
}

// creates an App bound to the process streams
func New() *App {
	return &App{
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
		NewClient: llm.NewClientWithConfig,
	}
}

// builds the forgeui command tree
func (a *App) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "forgeui",
		Short:         "Generate and preview UI components",
		Long:          "forgeui extracts component code from model responses, renders previews offline and generates components against an Ollama or OpenAI-compatible server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("FORGEUI_CONFIG"), "path to a YAML configuration file")

	root.AddCommand(
		a.extractCommand(),
		a.previewCommand(),
		a.generateCommand(),
		a.modelsCommand(),
		a.technologiesCommand(),
	)

	return root
}

// loads configuration once per process
func (a *App) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	a.cfg = cfg

	return cfg, nil
}

func (a *App) client() (llm.Client, *config.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}

	client, err := a.NewClient(cfg.ClientConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return client, cfg, nil
}

// the preview router with sandbox limits from configuration, or the
// defaults when configuration cannot be loaded
func (a *App) router() *preview.Router {
	opts := sandbox.DefaultOptions()

	if cfg, err := a.config(); err == nil && cfg.SandboxTimeout > 0 {
		opts.Timeout = cfg.SandboxTimeout
	}

	return preview.NewRouter(sandbox.NewCompiler(opts))
}

// reads the named file, or stdin when no file or "-" is given
func (a *App) readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(a.In)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	return string(data), nil
}

// writes content to path, or to Out when path is empty
func (a *App) writeOutput(path, content string) error {
	if path == "" {
		_, err := io.WriteString(a.Out, ensureNewline(content))
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}

	return s + "\n"
}
