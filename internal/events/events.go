// Package events provides an event system for harness run notifications.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventWorkerConnected is emitted when a worker completes its handshake
	EventWorkerConnected EventType = "worker_connected"
	// EventWorkerClosed is emitted when a worker reaches a terminal state
	EventWorkerClosed EventType = "worker_closed"
	// EventSnapshotVerified is emitted when a snapshot passes verification
	EventSnapshotVerified EventType = "snapshot_verified"
	// EventMismatchDetected is emitted when a worker finds a byte-level mismatch
	EventMismatchDetected EventType = "mismatch_detected"
	// EventDecodeError is emitted when a binary response cannot be decoded
	EventDecodeError EventType = "decode_error"
)

// Event represents a notification from a worker or the harness driver
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	WorkerID  int       `json:"worker_id"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	State    string `json:"state,omitempty"`
	X        uint32 `json:"x,omitempty"`
	Y        uint32 `json:"y,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Verified int    `json:"verified,omitempty"`
	Skipped  int    `json:"skipped,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewWorkerConnectedEvent creates a worker connected event
func NewWorkerConnectedEvent(workerID int) Event {
	return Event{
		Type:      EventWorkerConnected,
		Timestamp: time.Now(),
		WorkerID:  workerID,
	}
}

// NewWorkerClosedEvent creates a worker closed event with its terminal state
func NewWorkerClosedEvent(workerID int, state string) Event {
	return Event{
		Type:      EventWorkerClosed,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data: EventData{
			State: state,
		},
	}
}

// NewSnapshotVerifiedEvent creates a snapshot verified event
func NewSnapshotVerifiedEvent(workerID, verified, skipped int) Event {
	return Event{
		Type:      EventSnapshotVerified,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data: EventData{
			Verified: verified,
			Skipped:  skipped,
		},
	}
}

// NewMismatchDetectedEvent creates a mismatch detected event
func NewMismatchDetectedEvent(workerID int, x, y uint32, offset int) Event {
	return Event{
		Type:      EventMismatchDetected,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data: EventData{
			X:      x,
			Y:      y,
			Offset: offset,
		},
	}
}

// NewDecodeErrorEvent creates a decode error event
func NewDecodeErrorEvent(workerID int, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventDecodeError,
		Timestamp: time.Now(),
		WorkerID:  workerID,
		Data: EventData{
			Error: errMsg,
		},
	}
}
