package main

import (
	"fmt"
	"os"

	"codeberg.org/forgeui/server/internal/config"
	"codeberg.org/forgeui/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

func main() {
	if !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "forgeui-tui needs an interactive terminal")
		os.Exit(1)
	}

	// the client only needs the server URL, so a server-side config problem
	// must not keep it from starting
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		cfg = config.Default()
		if url := os.Getenv("FORGEUI_SERVER_URL"); url != "" {
			cfg.ServerURL = url
		}
	}

	app, err := tui.NewApp(cfg.Environment, cfg.ServerURL, os.Getenv("FORGEUI_SESSION_ID"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error starting forgeui: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running forgeui: %v\n", err)
		os.Exit(1)
	}
}
