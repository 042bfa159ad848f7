package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// entries kept locally, matching the server's cap
const maxHistory = 10

var defaultTechnologies = []TechnologyInfo{
	{ID: "react", Name: "React", Extension: "jsx", Native: true},
	{ID: "vue", Name: "Vue", Extension: "vue"},
	{ID: "svelte", Name: "Svelte", Extension: "svelte"},
	{ID: "angular", Name: "Angular", Extension: "ts"},
	{ID: "html", Name: "HTML/CSS/JS", Extension: "html"},
}

// returns a new editor streaming through client
func NewEditor(client *WSClient) *EditorModel {
	ti := textinput.New()
	ti.Placeholder = "describe the component you want..."
	ti.Focus()
	ti.CharLimit = 8000
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorGray)

	return &EditorModel{
		input:        ti,
		spinner:      sp,
		client:       client,
		technologies: defaultTechnologies,
		historyIndex: -1,
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.client.ConnectCmd())
}

func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m, m.submit()

		case "tab":
			if len(m.technologies) > 0 {
				m.techIndex = (m.techIndex + 1) % len(m.technologies)
			}
			return m, nil

		case "ctrl+n":
			if len(m.models) > 0 {
				m.modelIndex = (m.modelIndex + 1) % len(m.models)
			}
			return m, nil

		case "ctrl+x":
			if m.isFetching {
				if err := m.client.Cancel(); err != nil {
					m.previewNote = errorStyle.Render(err.Error())
				}
			}
			return m, nil

		case "ctrl+p":
			m.loadHistory()
			return m, nil

		case "ctrl+l":
			m.input.SetValue("")
			m.streamed.Reset()
			m.code = ""
			m.metadata = ""
			m.previewNote = ""
			m.historyIndex = -1
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatusMsg:
		m.models = msg.models
		m.modelIndex = 0
		return m, nil

	case WSConnectedMsg:
		m.connected = true
		m.history = msg.history
		if len(msg.technologies) > 0 {
			m.technologies = msg.technologies
			m.techIndex = 0
		}
		m.previewNote = infoStyle.Render("connected, session " + shortID(msg.sessionID))
		return m, m.client.ListenCmd()

	case WSConnectErrorMsg:
		m.connected = false
		m.previewNote = errorStyle.Render(msg.err.Error())
		return m, nil

	case WSDisconnectedMsg:
		m.connected = false
		m.isFetching = false
		m.previewNote = warningStyle.Render("disconnected from server")
		return m, nil

	case WSEventMsg:
		m.handleEvent(msg.message)
		return m, m.client.ListenCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *EditorModel) View() string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorWhite).
		Render("FORGEUI")

	help := lipgloss.NewStyle().
		Foreground(colorGray).
		Render("[Enter: Send] [Tab: Technology] [Ctrl+N: Model] [Ctrl+X: Cancel] [Ctrl+P: History] [Ctrl+L: Clear] [Ctrl+C: Exit]")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		header,
		strings.Repeat(" ", max(1, m.width-lipgloss.Width(header)-lipgloss.Width(help)-2)),
		help,
	))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("technology: %s | model: %s", m.technology().Name, m.modelLabel())))
	b.WriteString("\n\n")

	if !m.ready {
		b.WriteString(infoStyle.Render("initializing..."))
		return b.String()
	}

	b.WriteString(borderStyle.Width(max(10, m.width-4)).Render(m.viewport.View()))
	b.WriteString("\n")

	if m.metadata != "" {
		b.WriteString(infoStyle.Render(m.metadata))
		b.WriteString("\n")
	}

	b.WriteString(borderStyle.Width(max(10, m.width-4)).Render(m.input.View()))
	b.WriteString("\n")

	status := m.previewNote
	if m.isFetching {
		status = m.spinner.View() + " " + infoStyle.Render("generating...")
	}
	b.WriteString(status)

	return b.String()
}

func (m *EditorModel) submit() tea.Cmd {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return nil
	}

	if !m.connected {
		m.previewNote = warningStyle.Render("not connected, reconnecting...")
		return m.client.ConnectCmd()
	}

	if err := m.client.Generate(prompt, m.technology().ID, m.modelName()); err != nil {
		m.previewNote = errorStyle.Render(err.Error())
		return nil
	}

	m.input.SetValue("")
	return nil
}

func (m *EditorModel) handleEvent(msg wsMessage) {
	switch msg.Type {
	case typeGenerationStarted:
		var p generationStartedPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}

		m.generation = p.Generation
		m.isFetching = true
		m.streamed.Reset()
		m.previewNote = ""
		m.metadata = "model: " + p.Model
		m.refresh()

	case typeFragment:
		var p fragmentPayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.Generation != m.generation {
			return
		}

		m.streamed.WriteString(p.Text)
		m.refresh()

	case typeGenerationComplete:
		var p generationCompletePayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.Generation != m.generation {
			return
		}

		m.isFetching = false
		m.code = p.Code
		m.codeTech = p.Technology
		m.metadata = formatCompletion(p)
		m.addHistory(p.Entry)

		switch {
		case p.PreviewError != nil:
			m.previewNote = warningStyle.Render("preview failed: " + p.PreviewError.Message + " " + p.PreviewError.Details)
		case p.Fallback:
			m.previewNote = warningStyle.Render("no code block found, showing the whole response")
		default:
			m.previewNote = successStyle.Render("done")
		}

		m.refresh()

	case typeGenerationSuperseded:
		var p generationSupersededPayload
		if json.Unmarshal(msg.Payload, &p) != nil || p.Generation != m.generation {
			return
		}

		m.isFetching = false
		m.previewNote = warningStyle.Render("generation " + p.Reason)

	case typeError:
		var p errorPayload
		if json.Unmarshal(msg.Payload, &p) != nil {
			return
		}

		m.isFetching = false
		m.previewNote = errorStyle.Render(p.Error + ": " + p.Message)

	case typeServerShutdown:
		m.isFetching = false
		m.previewNote = warningStyle.Render("server is shutting down")
	}
}

func (m *EditorModel) addHistory(entry HistoryEntry) {
	if entry.ID == "" {
		return
	}

	m.history = append([]HistoryEntry{entry}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}

	m.historyIndex = -1
}

// steps back through history, loading each entry's code
func (m *EditorModel) loadHistory() {
	if len(m.history) == 0 {
		m.previewNote = infoStyle.Render("history is empty")
		return
	}

	m.historyIndex = (m.historyIndex + 1) % len(m.history)
	entry := m.history[m.historyIndex]

	m.code = entry.Code
	m.codeTech = entry.Technology
	m.streamed.Reset()
	m.metadata = fmt.Sprintf("history %d/%d | %s | %s", m.historyIndex+1, len(m.history), entry.Technology, entry.Prompt)
	m.refresh()
}

func (m *EditorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(10, width-10)

	vpHeight := max(5, height-10)
	if !m.ready {
		m.viewport = viewport.New(max(10, width-6), vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = max(10, width-6)
		m.viewport.Height = vpHeight
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, width-8)),
	)
	if err == nil {
		m.glamourRenderer = renderer
	}

	m.refresh()
}

// rebuilds the viewport content from the current state
func (m *EditorModel) refresh() {
	if !m.ready {
		return
	}

	var content string

	switch {
	case m.isFetching:
		content = m.streamed.String()
	case m.code != "":
		content = m.renderCode()
	default:
		content = infoStyle.Render("ready! describe a component below and press enter.")
	}

	m.viewport.SetContent(content)

	if m.isFetching {
		m.viewport.GotoBottom()
	} else {
		m.viewport.GotoTop()
	}
}

func (m *EditorModel) renderCode() string {
	if m.glamourRenderer == nil {
		return m.code
	}

	out, err := m.glamourRenderer.Render(fenced(m.code, m.codeTech))
	if err != nil {
		return m.code
	}

	return out
}

func (m *EditorModel) technology() TechnologyInfo {
	if len(m.technologies) == 0 {
		return defaultTechnologies[0]
	}

	return m.technologies[m.techIndex%len(m.technologies)]
}

// returns the selected model, empty for the server default
func (m *EditorModel) modelName() string {
	if len(m.models) == 0 {
		return ""
	}

	return m.models[m.modelIndex%len(m.models)]
}

func (m *EditorModel) modelLabel() string {
	if name := m.modelName(); name != "" {
		return name
	}

	return "server default"
}

// returns the code currently shown
func (m *EditorModel) GetCode() string {
	return m.code
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
