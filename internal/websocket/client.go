package websocket

import (
	"encoding/json"
	"time"

	apierrors "codeberg.org/forgeui/server/internal/errors"
	"codeberg.org/forgeui/server/internal/history"
	"codeberg.org/forgeui/server/internal/logger"
	"github.com/gorilla/websocket"
)

// creates a new websocket client connection
func NewClient(id, sessionID, ipAddress string, initialHistory []history.Entry, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:                 id,
		SessionID:          sessionID,
		IPAddress:          ipAddress,
		InitialHistory:     initialHistory,
		conn:               conn,
		hub:                hub,
		send:               make(chan []byte, 256),
		closed:             false,
		generateTimestamps: make([]time.Time, 0, maxGenerationsPerMinute),
	}
}

// reads messages from the websocket connection to the hub for processing
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"session_id", c.SessionID,
					"error", err,
				)
			}

			break
		}

		// parse the message
		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			logger.Debug("failed to unmarshal message",
				"client_id", c.ID,
				"session_id", c.SessionID,
				"error", err,
			)

			c.SendError("bad_request", "invalid message format", err.Error())
			continue
		}

		// set session ID and client ID from client
		msg.SessionID = c.SessionID
		msg.ClientID = c.ID
		msg.Timestamp = time.Now().UTC()

		// forward to hub for processing
		c.hub.Broadcast <- &msg
	}
}

// writes messages from the hub to the websocket connection for sending to the client
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			// one websocket frame per message so clients can decode each frame as JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sends a message to the client
func (c *Client) Send(msg *Message) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	c.mu.RLock()

	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	c.mu.RUnlock()

	messageBytes, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return marshalErr
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		// channel is full, send error directly to websocket before closing
		c.sendBufferOverflowError()
		c.Close()
		return ErrConnectionClosed
	}
}

// sends buffer overflow error directly to websocket (bypassing the full channel)
func (c *Client) sendBufferOverflowError() {
	if c.conn == nil {
		return
	}

	errorMsg, err := NewMessage(TypeError, c.SessionID, apierrors.ErrorResponse{
		Error:   "buffer_overflow",
		Message: "message buffer full, connection will be closed",
		Details: "too many messages queued, please reconnect",
	})
	if err != nil {
		return
	}

	errorBytes, err := json.Marshal(errorMsg)
	if err != nil {
		return
	}

	// write directly to websocket with short deadline
	c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck,gosec
	c.conn.WriteMessage(websocket.TextMessage, errorBytes)   //nolint:errcheck,gosec
}

// sends an error message to the client
func (c *Client) SendError(code, message, details string) {
	c.sendErrorResponse(apierrors.ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

func (c *Client) sendErrorResponse(response apierrors.ErrorResponse) {
	errorMsg, err := NewMessage(TypeError, c.SessionID, response)
	if err != nil {
		logger.ErrorErr(err, "failed to create error message",
			"client_id", c.ID,
			"session_id", c.SessionID,
			"error_code", response.Error,
		)
		return
	}

	c.Send(errorMsg) //nolint:errcheck,gosec // G104: best effort error notification
}

// closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}

// checks if the client can start another generation
func (c *Client) checkGenerateRateLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	oneMinuteAgo := now.Add(-1 * time.Minute)

	// remove timestamps older than 1 minute
	validTimestamps := make([]time.Time, 0, maxGenerationsPerMinute)

	for _, ts := range c.generateTimestamps {
		if ts.After(oneMinuteAgo) {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	c.generateTimestamps = validTimestamps

	// check if we've exceeded the limit
	if len(c.generateTimestamps) >= maxGenerationsPerMinute {
		return false
	}

	// add current timestamp
	c.generateTimestamps = append(c.generateTimestamps, now)
	return true
}
