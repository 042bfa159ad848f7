package tui

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/gorilla/websocket"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateEditor
)

// main TUI application model
type Model struct {
	state     AppState
	mode      string
	serverURL string
	width     int
	height    int
	err       error
	welcome   *Welcome
	editor    *EditorModel
	api       *APIClient
	ws        *WSClient
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to transition to the editor state
type EnterEditorMsg struct{}

// one generation as the server records it
type HistoryEntry struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Code       string `json:"code"`
	Technology string `json:"technology"`
	Model      string `json:"model"`
	Timestamp  string `json:"timestamp"`
}

// a technology the server can preview
type TechnologyInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Native    bool   `json:"native"`
}

// prompt editor and streamed output
type EditorModel struct {
	input           textinput.Model
	viewport        viewport.Model
	spinner         spinner.Model
	glamourRenderer *glamour.TermRenderer
	width           int
	height          int
	ready           bool

	client       *WSClient
	connected    bool
	technologies []TechnologyInfo
	techIndex    int
	models       []string
	modelIndex   int

	generation  uint64
	isFetching  bool
	streamed    strings.Builder
	code        string
	codeTech    string
	metadata    string
	previewNote string

	history      []HistoryEntry
	historyIndex int
}

// welcome screen model
type Welcome struct {
	mode     string
	input    string
	status   string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
	Available   bool
}

// sent when the server starts
type ServerStartedMsg struct{}

// asks the app to probe the server
type StatusRequestMsg struct{}

// sent with the result of a status probe
type StatusMsg struct {
	status StatusResponse
	models []string
}

// sent when the websocket connection is established
type WSConnectedMsg struct {
	sessionID    string
	history      []HistoryEntry
	technologies []TechnologyInfo
}

// sent when the websocket connection could not be established
type WSConnectErrorMsg struct {
	err error
}

// carries one message from the server
type WSEventMsg struct {
	message wsMessage
}

// sent when the server closed the connection
type WSDisconnectedMsg struct{}

// manages the streaming connection to the server
type WSClient struct {
	endpoint  string
	conn      *websocket.Conn
	sessionID string
	events    chan wsMessage
	mu        sync.Mutex
	connected bool
}

// websocket envelope, mirrors the server's message
type wsMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type generatePayload struct {
	Prompt     string `json:"prompt"`
	Technology string `json:"technology"`
	Model      string `json:"model,omitempty"`
}

type sessionStatePayload struct {
	SessionID    string           `json:"session_id"`
	History      []HistoryEntry   `json:"history"`
	Technologies []TechnologyInfo `json:"technologies"`
}

type generationStartedPayload struct {
	Generation uint64 `json:"generation"`
	Model      string `json:"model"`
}

type fragmentPayload struct {
	Generation uint64 `json:"generation"`
	Text       string `json:"text"`
}

type generationCompletePayload struct {
	Generation   uint64        `json:"generation"`
	Code         string        `json:"code"`
	Technology   string        `json:"technology"`
	Match        string        `json:"match"`
	Fallback     bool          `json:"fallback"`
	Kind         string        `json:"kind"`
	PreviewError *errorPayload `json:"preview_error,omitempty"`
	Entry        HistoryEntry  `json:"entry"`
}

type generationSupersededPayload struct {
	Generation uint64 `json:"generation"`
	Reason     string `json:"reason"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
