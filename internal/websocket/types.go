package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/technology"
	"github.com/gorilla/websocket"
)

// message type constants for websocket communication
const (
	// is sent by clients to start a generation
	TypeGenerate = "generate"

	// is sent by clients to abort the generation in flight
	TypeCancel = "cancel"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent to connecting client with session info
	TypeSessionState = "session_state"

	// is sent when a generation run starts
	TypeGenerationStarted = "generation_started"

	// carries one streamed fragment of the raw response
	TypeFragment = "fragment"

	// carries the extracted code and its preview
	TypeGenerationComplete = "generation_complete"

	// is sent when a run was replaced or cancelled before finishing
	TypeGenerationSuperseded = "generation_superseded"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64 KB

	// rate limiting constants
	maxGenerationsPerMinute = 10 // maximum generate requests per minute
)

// hub connection limit constants
const (
	maxConnectionsPerIP = 10
)

// errors
var (
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNothingToCancel   = errors.New("no generation in progress")
)

// represents a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	ClientID  string          `json:"-"` // internal only, not sent to clients
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// contains a generation request from a client
type GeneratePayload struct {
	Prompt      string                `json:"prompt"`
	Technology  technology.Technology `json:"technology"`
	Model       string                `json:"model,omitempty"`
	Temperature float64               `json:"temperature,omitempty"`
}

// contains session info sent to connecting client
type SessionStatePayload struct {
	SessionID    string            `json:"session_id"`
	History      []history.Entry   `json:"history"`
	Technologies []technology.Info `json:"technologies"`
}

// contains information about a started run
type GenerationStartedPayload struct {
	Generation uint64                `json:"generation"`
	Prompt     string                `json:"prompt"`
	Technology technology.Technology `json:"technology"`
	Model      string                `json:"model"`
}

// contains one fragment of streamed text
type FragmentPayload struct {
	Generation uint64 `json:"generation"`
	Text       string `json:"text"`
}

// contains the outcome of a finished run
type GenerationCompletePayload struct {
	Generation   uint64                   `json:"generation"`
	Code         string                   `json:"code"`
	Technology   technology.Technology    `json:"technology"`
	Match        string                   `json:"match"`
	Fallback     bool                     `json:"fallback"`
	Kind         string                   `json:"kind,omitempty"`
	Document     string                   `json:"document,omitempty"`
	PreviewError *apierrors.ErrorResponse `json:"preview_error,omitempty"`
	Entry        history.Entry            `json:"entry"`
}

// contains information about a run that will not complete
type GenerationSupersededPayload struct {
	Generation uint64 `json:"generation"`
	Reason     string `json:"reason"`
}

// contains information about server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// represents a websocket client connection
type Client struct {
	// unique identifier for this client
	ID string

	// session ID this client is connected to
	SessionID string

	// IP address of the client (for connection tracking)
	IPAddress string

	// history to send on connect
	InitialHistory []history.Entry

	// websocket connection
	conn *websocket.Conn

	// hub reference for message broadcasting
	hub *Hub

	// buffered channel of outbound messages
	send chan []byte

	// mutex for thread-safe operations
	mu sync.RWMutex

	// flag indicating if client is closed
	closed bool

	// rate limiting: generate request timestamps (sliding window)
	generateTimestamps []time.Time
}

// maintains the set of active clients and broadcasts messages to sessions
type Hub struct {
	// registered clients by session ID and client ID
	sessions map[string]map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// incoming messages from clients
	Broadcast chan *Message

	// mutex for thread-safe access to sessions
	mu sync.RWMutex

	// message handlers for different message types
	handlers map[string]MessageHandler

	// channel to signal shutdown
	shutdown     chan struct{}
	shutdownOnce sync.Once

	// closed when Run returns
	done chan struct{}

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence numbers per session for message ordering
	sessionSequences map[string]uint64

	// callback for the last client of a session disconnecting
	onSessionEmpty func(sessionID string)

	// delay between the shutdown notice and closing connections
	shutdownGrace time.Duration
}

// processes a specific message type
type MessageHandler func(hub *Hub, client *Client, msg *Message) error
