package websocket

import (
	"time"

	"codeberg.org/forgeui/server/internal/logger"
	"codeberg.org/forgeui/server/internal/technology"
)

func NewHub() *Hub {
	return &Hub{
		sessions:         make(map[string]map[string]*Client),
		Register:         make(chan *Client),
		Unregister:       make(chan *Client),
		Broadcast:        make(chan *Message, 256),
		handlers:         make(map[string]MessageHandler),
		shutdown:         make(chan struct{}),
		done:             make(chan struct{}),
		ipConnections:    make(map[string]int),
		sessionSequences: make(map[string]uint64),
		shutdownGrace:    500 * time.Millisecond,
	}
}

// registers a handler for a specific message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// sets callback to be called when the last client of a session disconnects
func (h *Hub) OnSessionEmpty(callback func(sessionID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSessionEmpty = callback
}

// starts the hub's main loop
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.handleMessage(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.SessionID] == nil {
		h.sessions[client.SessionID] = make(map[string]*Client)
	}

	h.sessions[client.SessionID][client.ID] = client

	logger.Info("client registered",
		"client_id", client.ID,
		"session_id", client.SessionID,
	)

	// send session_state to connecting client
	sessionStateMsg, err := NewMessage(TypeSessionState, client.SessionID, SessionStatePayload{
		SessionID:    client.SessionID,
		History:      client.InitialHistory,
		Technologies: technology.All(),
	})
	if err == nil {
		if sendErr := client.Send(sessionStateMsg); sendErr != nil {
			logger.ErrorErr(sendErr, "failed to send session state",
				"client_id", client.ID,
				"session_id", client.SessionID,
			)
		}
	}
}

// removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	// capture callback reference under lock
	callback := h.onSessionEmpty

	sessionClients, exists := h.sessions[client.SessionID]
	if !exists {
		h.mu.Unlock()
		return
	}

	if _, exists := sessionClients[client.ID]; !exists {
		h.mu.Unlock()
		return
	}

	delete(sessionClients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	logger.Info("client unregistered",
		"client_id", client.ID,
		"session_id", client.SessionID,
	)

	empty := len(sessionClients) == 0
	if empty {
		delete(h.sessions, client.SessionID)
		delete(h.sessionSequences, client.SessionID)

		logger.Info("session has no more clients, removed",
			"session_id", client.SessionID,
		)
	}

	h.mu.Unlock()

	// call callback outside lock
	if empty && callback != nil {
		callback(client.SessionID)
	}
}

// processes an incoming message
func (h *Hub) handleMessage(msg *Message) {
	h.mu.RLock()

	sessionClients, exists := h.sessions[msg.SessionID]
	if !exists {
		h.mu.RUnlock()
		logger.Warn("session not found for message",
			"session_id", msg.SessionID,
			"message_type", msg.Type,
		)
		return
	}

	sender, exists := sessionClients[msg.ClientID]
	handler, hasHandler := h.handlers[msg.Type]
	h.mu.RUnlock()

	if !exists {
		logger.Warn("sender client not found for message",
			"client_id", msg.ClientID,
			"session_id", msg.SessionID,
			"message_type", msg.Type,
		)
		return
	}

	if !hasHandler {
		// reject unhandled message types
		logger.Warn("unhandled message type received",
			"message_type", msg.Type,
			"client_id", sender.ID,
			"session_id", msg.SessionID,
		)

		sender.SendError("bad_request", "unsupported message type", "message type not recognized")
		return
	}

	// run handler asynchronously to avoid blocking the hub.
	// handlers notify the client themselves, the hub only logs
	go func() {
		if err := handler(h, sender, msg); err != nil {
			logger.Warn("handler error",
				"message_type", msg.Type,
				"client_id", sender.ID,
				"session_id", msg.SessionID,
				"error", err,
			)
		}
	}()
}

// sends a message to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, msg *Message, excludeClientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastToSession(sessionID, msg, excludeClientID)
}

// the internal broadcast function (must be called with lock held)
func (h *Hub) broadcastToSession(sessionID string, msg *Message, excludeClientID string) {
	sessionClients, exists := h.sessions[sessionID]
	if !exists {
		return
	}

	// assign sequence number to message
	h.sessionSequences[sessionID]++
	msg.Sequence = h.sessionSequences[sessionID]

	for clientID, client := range sessionClients {
		if clientID == excludeClientID {
			continue
		}

		if err := client.Send(msg); err != nil {
			logger.ErrorErr(err, "failed to send message to client",
				"client_id", clientID,
				"session_id", sessionID,
			)
		}
	}
}

// returns all clients in a session
func (h *Hub) GetSessionClients(sessionID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sessionClients, exists := h.sessions[sessionID]
	if !exists {
		return []*Client{}
	}

	clients := make([]*Client, 0, len(sessionClients))

	for _, client := range sessionClients {
		clients = append(clients, client)
	}

	return clients
}

// returns the number of clients in a session
func (h *Hub) GetClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions[sessionID])
}

func (h *Hub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// checks if a session has any active connections
func (h *Hub) IsSessionActive(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sessionClients, exists := h.sessions[sessionID]
	return exists && len(sessionClients) > 0
}

// stops the hub, notifying clients first. blocks until Run returns
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})

	<-h.done
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	// send shutdown notification to all clients first
	for sessionID, sessionClients := range h.sessions {
		shutdownMsg, err := NewMessage(TypeServerShutdown, sessionID, ServerShutdownPayload{
			Reason: "server is shutting down",
		})
		if err != nil {
			logger.ErrorErr(err, "failed to create shutdown message")
			continue
		}

		for _, client := range sessionClients {
			if err := client.Send(shutdownMsg); err != nil {
				logger.ErrorErr(err, "failed to send shutdown notification",
					"client_id", client.ID,
					"session_id", sessionID,
				)
			}
		}
	}

	hasClients := len(h.sessions) > 0

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	if hasClients {
		time.Sleep(h.shutdownGrace)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for sessionID, sessionClients := range h.sessions {
		for clientID, client := range sessionClients {
			client.Close()
			logger.Debug("closed client",
				"client_id", clientID,
				"session_id", sessionID,
			)
		}
	}

	// clear all sessions and connection tracking
	h.sessions = make(map[string]map[string]*Client)
	h.ipConnections = make(map[string]int)
	h.sessionSequences = make(map[string]uint64)
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false, "Maximum connections per IP address exceeded"
	}

	return true, ""
}

// increments the connection count for an IP address
func (h *Hub) TrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]++
}

// decrements the connection count for an IP address
func (h *Hub) UntrackIPConnection(ipAddress string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ipConnections[ipAddress]--

	if h.ipConnections[ipAddress] <= 0 {
		delete(h.ipConnections, ipAddress)
	}
}
