package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// returns a new welcome screen
func NewWelcome(mode string) *Welcome {
	commands := []Command{
		{Name: "start", Description: "start a local forgeui server", Available: mode == "development"},
		{Name: "status", Description: "check the generation service", Available: true},
		{Name: "editor", Description: "generate and preview components", Available: true},
		{Name: "quit", Description: "exit forgeui", Available: true},
	}

	return &Welcome{
		mode:     mode,
		commands: commands,
	}
}

func (m *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := m.executeCommand()
			m.input = ""
			return m, cmd
		case "backspace":
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		default:
			if len(msg.String()) == 1 {
				m.input += msg.String()
			}
		}

	case ServerStartedMsg:
		m.status = successStyle.Render("server started")
		return m, nil

	case StatusMsg:
		m.status = formatStatus(msg)
		return m, nil
	}

	return m, nil
}

func (m *Welcome) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("describe a component, preview it in seconds"))
	b.WriteString("\n\n")

	modeText := fmt.Sprintf("mode: %s", strings.ToUpper(m.mode))
	b.WriteString(infoStyle.Render(modeText))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range m.commands {
		if !cmd.Available {
			continue
		}
		line := fmt.Sprintf("  %s %s",
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	prompt := promptStyle.Render("> ")
	input := inputStyle.Render(m.input + "_")
	b.WriteString(prompt + input)
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func (m *Welcome) executeCommand() tea.Cmd {
	cmd := strings.TrimSpace(m.input)

	switch cmd {
	case "quit":
		return tea.Quit

	case "start":
		if m.mode == "development" {
			return startServer
		}
		return func() tea.Msg {
			return ErrorMsg{err: fmt.Errorf("start is only available in development mode")}
		}

	case "status":
		return func() tea.Msg {
			return StatusRequestMsg{}
		}

	case "editor":
		return func() tea.Msg {
			return EnterEditorMsg{}
		}

	default:
		if cmd != "" {
			return func() tea.Msg {
				return ErrorMsg{err: fmt.Errorf("unknown command: %s", cmd)}
			}
		}
		return nil
	}
}

func formatStatus(msg StatusMsg) string {
	state := errorStyle.Render("unreachable")
	if msg.status.Connected {
		state = successStyle.Render("connected")
	}

	line := fmt.Sprintf("%s %s at %s", msg.status.Provider, state, msg.status.BaseURL)

	if len(msg.models) == 0 {
		return line + "\n" + infoStyle.Render("no models available")
	}

	return line + "\n" + infoStyle.Render("models: "+strings.Join(msg.models, ", "))
}
