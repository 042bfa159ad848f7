package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	hub.shutdownGrace = 0
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	return hub
}

// reads the next message queued for a client
func readMessage(t *testing.T, client *Client) *Message {
	t.Helper()

	select {
	case data, ok := <-client.send:
		require.True(t, ok, "client channel closed")

		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubCreation(t *testing.T) {
	hub := NewHub()
	require.NotNil(t, hub)
	assert.NotNil(t, hub.Register)
	assert.NotNil(t, hub.Unregister)
	assert.NotNil(t, hub.Broadcast)
}

func TestHubRegisterSendsSessionState(t *testing.T) {
	hub := startHub(t)

	client := newTestClient("test-client-1", "test-session", hub)
	hub.Register <- client

	msg := readMessage(t, client)
	assert.Equal(t, TypeSessionState, msg.Type)

	var state SessionStatePayload
	require.NoError(t, msg.UnmarshalPayload(&state))
	assert.Equal(t, "test-session", state.SessionID)
	assert.Len(t, state.Technologies, 5)

	clients := hub.GetSessionClients("test-session")
	require.Len(t, clients, 1)
	assert.Equal(t, "test-client-1", clients[0].ID)
	assert.True(t, hub.IsSessionActive("test-session"))
}

func TestHubUnregisterClient(t *testing.T) {
	hub := startHub(t)

	emptied := make(chan string, 1)
	hub.OnSessionEmpty(func(sessionID string) {
		emptied <- sessionID
	})

	client := newTestClient("test-client-1", "test-session", hub)
	hub.Register <- client
	readMessage(t, client)

	hub.Unregister <- client

	select {
	case sessionID := <-emptied:
		assert.Equal(t, "test-session", sessionID)
	case <-time.After(5 * time.Second):
		t.Fatal("session empty callback not called")
	}

	assert.Equal(t, 0, hub.GetClientCount("test-session"))
	assert.True(t, client.IsClosed())
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := startHub(t)

	client1 := newTestClient("client-1", "session-1", hub)
	client2 := newTestClient("client-2", "session-1", hub)
	other := newTestClient("client-3", "session-2", hub)

	for _, c := range []*Client{client1, client2, other} {
		hub.Register <- c
		readMessage(t, c)
	}

	first, err := NewMessage(TypeFragment, "session-1", FragmentPayload{Generation: 1, Text: "a"})
	require.NoError(t, err)
	hub.BroadcastToSession("session-1", first, "")

	second, err := NewMessage(TypeFragment, "session-1", FragmentPayload{Generation: 1, Text: "b"})
	require.NoError(t, err)
	hub.BroadcastToSession("session-1", second, "client-2")

	got := readMessage(t, client1)
	assert.Equal(t, uint64(1), got.Sequence)
	got = readMessage(t, client1)
	assert.Equal(t, uint64(2), got.Sequence)

	got = readMessage(t, client2)
	assert.Equal(t, TypeFragment, got.Type)
	assert.Empty(t, client2.send)
	assert.Empty(t, other.send)
}

func TestHubUnknownMessageType(t *testing.T) {
	hub := startHub(t)

	client := newTestClient("client-1", "session-1", hub)
	hub.Register <- client
	readMessage(t, client)

	hub.Broadcast <- &Message{Type: "code_update", SessionID: "session-1", ClientID: "client-1"}

	msg := readMessage(t, client)
	assert.Equal(t, TypeError, msg.Type)
}

func TestHubPing(t *testing.T) {
	hub := startHub(t)
	hub.RegisterHandler(TypePing, PingHandler())

	client := newTestClient("client-1", "session-1", hub)
	hub.Register <- client
	readMessage(t, client)

	hub.Broadcast <- &Message{Type: TypePing, SessionID: "session-1", ClientID: "client-1"}

	assert.Equal(t, TypePong, readMessage(t, client).Type)
}

func TestHubShutdownNotifiesClients(t *testing.T) {
	hub := NewHub()
	hub.shutdownGrace = 0
	go hub.Run()

	client := newTestClient("client-1", "session-1", hub)
	hub.Register <- client
	readMessage(t, client)

	hub.Shutdown()
	hub.Shutdown()

	assert.Equal(t, TypeServerShutdown, readMessage(t, client).Type)
	assert.True(t, client.IsClosed())
	assert.Equal(t, 0, hub.GetSessionCount())
}

func TestHubConnectionLimits(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnectionsPerIP; i++ {
		ok, _ := hub.CanAcceptConnection("10.0.0.1")
		require.True(t, ok)
		hub.TrackIPConnection("10.0.0.1")
	}

	ok, reason := hub.CanAcceptConnection("10.0.0.1")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	hub.UntrackIPConnection("10.0.0.1")
	ok, _ = hub.CanAcceptConnection("10.0.0.1")
	assert.True(t, ok)
}
