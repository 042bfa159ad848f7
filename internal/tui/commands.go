package tui

import (
	"fmt"
	"os"
	"os/exec"

	"codeberg.org/forgeui/server/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
)

// builds the server binary when missing and runs it in the background
func startServer() tea.Msg {
	serverPath := "bin/server"

	if _, err := os.Stat(serverPath); os.IsNotExist(err) {
		buildCmd := exec.Command("go", "build", "-o", serverPath, "./cmd/server")
		if err := buildCmd.Run(); err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to build server: %w", err)}
		}
	}

	cmd := exec.Command(serverPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return ErrorMsg{err: fmt.Errorf("failed to start server: %w", err)}
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.ErrorErr(err, "server error")
		}
	}()

	return ServerStartedMsg{}
}
