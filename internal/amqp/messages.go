package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces that a new budget snapshot was
// persisted. It carries only the profile and revision; the worker
// fetches the full state from storage.
type SnapshotSavedMessage struct {
	Profile   string    `json:"profile"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotSavedMessage creates a message for a freshly saved snapshot.
func NewSnapshotSavedMessage(profile string, revision int64) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		Profile:   profile,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotSavedMessageFromJSON creates a message from JSON bytes.
func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
