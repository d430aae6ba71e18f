package amqp

import (
	"testing"
	"time"
)

func TestSnapshotSavedMessageJSON(t *testing.T) {
	msg := NewSnapshotSavedMessage("default", 42)
	if msg.Timestamp.IsZero() {
		t.Error("NewSnapshotSavedMessage() left timestamp unset")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	back, err := SnapshotSavedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("SnapshotSavedMessageFromJSON() error = %v", err)
	}
	if back.Profile != "default" || back.Revision != 42 {
		t.Errorf("round trip = %+v, want profile=default revision=42", back)
	}
	if !back.Timestamp.Equal(msg.Timestamp.Truncate(0)) && back.Timestamp.Unix() != msg.Timestamp.Unix() {
		t.Errorf("timestamp round trip = %v, want %v", back.Timestamp, msg.Timestamp)
	}
}

func TestSnapshotSavedMessageFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty", []byte("")},
		{"not json", []byte("snapshot 42")},
		{"wrong type", []byte(`{"revision": "forty-two"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SnapshotSavedMessageFromJSON(tt.body); err == nil {
				t.Error("expected error for malformed payload")
			}
		})
	}
}

func TestSnapshotSavedMessageTimestampIsRecent(t *testing.T) {
	msg := NewSnapshotSavedMessage("p", 1)
	if time.Since(msg.Timestamp) > time.Minute {
		t.Errorf("timestamp %v is not recent", msg.Timestamp)
	}
}
