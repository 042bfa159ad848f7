package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// returns the application for the server at serverURL; sessionID may be
// empty to start a new session
func NewApp(mode, serverURL, sessionID string) (*Model, error) {
	client, err := NewWSClient(serverURL, sessionID)
	if err != nil {
		return nil, err
	}

	return &Model{
		state:     StateWelcome,
		mode:      mode,
		serverURL: serverURL,
		welcome:   NewWelcome(mode),
		editor:    NewEditor(client),
		api:       NewAPIClient(serverURL),
		ws:        client,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// only quit from welcome screen, not from editor
		if msg.String() == "ctrl+c" && m.state == StateWelcome {
			m.ws.Close()
			return m, tea.Quit
		}

		// in editor, ctrl+c should go back to welcome
		if msg.String() == "ctrl+c" && m.state == StateEditor {
			m.state = StateWelcome
			return m, nil
		}

		// any key dismisses an error
		if m.err != nil {
			m.err = nil
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if m.state == StateEditor {
			m.editor, _ = m.editor.Update(msg)
		}

		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	// the stream keeps flowing while the welcome screen is shown
	case WSEventMsg, WSConnectedMsg, WSConnectErrorMsg, WSDisconnectedMsg, spinner.TickMsg:
		return m.updateEditor(msg)

	case StatusMsg:
		m.welcome, _ = m.welcome.Update(msg)
		m.editor, _ = m.editor.Update(msg)
		return m, nil

	case StatusRequestMsg:
		return m, m.api.StatusCmd()

	case EnterEditorMsg:
		m.state = StateEditor
		m.editor.resize(m.width, m.height)

		if m.ws.IsConnected() {
			return m, m.api.StatusCmd()
		}

		return m, tea.Batch(m.editor.Init(), m.api.StatusCmd())
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcome(msg)

	case StateEditor:
		return m.updateEditor(msg)

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View()

	case StateEditor:
		return m.editor.View()

	default:
		return "Unknown state"
	}
}

func (m *Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.welcome, cmd = m.welcome.Update(msg)

	return m, cmd
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	return m, cmd
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press any key to continue, Ctrl+C to exit\n", err)
}
