package tui

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// creates a new websocket client for the server at serverURL. a non-empty
// sessionID resumes that session
func NewWSClient(serverURL, sessionID string) (*WSClient, error) {
	endpoint, err := websocketURL(serverURL, sessionID)
	if err != nil {
		return nil, err
	}

	return &WSClient{endpoint: endpoint}, nil
}

// establishes the connection and reads the session state
func (c *WSClient) Connect() (sessionStatePayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return sessionStatePayload{SessionID: c.sessionID}, nil
	}

	conn, resp, err := websocket.DefaultDialer.Dial(c.endpoint, nil)
	if err != nil {
		return sessionStatePayload{}, fmt.Errorf("failed to connect: %w", err)
	}
	resp.Body.Close() //nolint:errcheck,gosec // handshake body is empty

	// set up ping/pong handlers to keep the connection alive
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup

	// the first message carries the session state
	var first wsMessage
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close() //nolint:errcheck,gosec // G104: failed handshake
		return sessionStatePayload{}, fmt.Errorf("failed to read session state: %w", err)
	}

	var state sessionStatePayload
	if first.Type != typeSessionState || json.Unmarshal(first.Payload, &state) != nil {
		conn.Close() //nolint:errcheck,gosec // G104: failed handshake
		return sessionStatePayload{}, fmt.Errorf("unexpected first message: %s", first.Type)
	}

	events := make(chan wsMessage, 256)

	c.conn = conn
	c.events = events
	c.sessionID = state.SessionID
	c.connected = true

	go c.readPump(conn, events)
	go c.pingPump(conn)

	return state, nil
}

// sends periodic pings to keep the connection alive
func (c *WSClient) pingPump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()

		if !c.connected || c.conn != conn {
			c.mu.Unlock()
			return
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing
		err := conn.WriteMessage(websocket.PingMessage, nil)
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// forwards every server message to the events channel until the
// connection ends
func (c *WSClient) readPump(conn *websocket.Conn, events chan<- wsMessage) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.connected = false
			c.conn = nil
		}
		c.mu.Unlock()

		conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
		close(events)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket timing

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		events <- msg
	}
}

// returns whether the client is connected
func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *WSClient) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// closes the websocket connection
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.WriteControl(websocket.CloseMessage, //nolint:errcheck,gosec // best-effort close frame
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.conn.Close() //nolint:errcheck,gosec // G104: close
		c.conn = nil
	}

	c.connected = false
}

// asks the server to start a generation; the outcome arrives as events
func (c *WSClient) Generate(prompt, tech, model string) error {
	return c.send(typeGenerate, generatePayload{
		Prompt:     prompt,
		Technology: tech,
		Model:      model,
	})
}

// asks the server to abort the generation in flight
func (c *WSClient) Cancel() error {
	return c.send(typeCancel, nil)
}

func (c *WSClient) send(msgType string, payload any) error {
	msg := wsMessage{
		Type:      msgType,
		Timestamp: time.Now(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}

		msg.Payload = data
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}

	msg.SessionID = c.sessionID

	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	return nil
}

// returns a tea.Cmd that connects to the websocket server
func (c *WSClient) ConnectCmd() tea.Cmd {
	return func() tea.Msg {
		state, err := c.Connect()
		if err != nil {
			return WSConnectErrorMsg{err: err}
		}

		return WSConnectedMsg{
			sessionID:    state.SessionID,
			history:      state.History,
			technologies: state.Technologies,
		}
	}
}

// returns a tea.Cmd that waits for the next server message
func (c *WSClient) ListenCmd() tea.Cmd {
	c.mu.Lock()
	events := c.events
	c.mu.Unlock()

	return func() tea.Msg {
		if events == nil {
			return WSDisconnectedMsg{}
		}

		msg, ok := <-events
		if !ok {
			return WSDisconnectedMsg{}
		}

		return WSEventMsg{message: msg}
	}
}
