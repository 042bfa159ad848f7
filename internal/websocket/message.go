package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// creates a message with a JSON encoded payload
func NewMessage(msgType, sessionID string, payload any) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}

	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg.Payload = data

	return msg, nil
}

// decodes the message payload into v
func (m *Message) UnmarshalPayload(v any) error {
	if len(m.Payload) == 0 {
		return ErrInvalidMessage
	}

	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	return nil
}
