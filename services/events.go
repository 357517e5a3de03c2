package services

import (
	"bytes"
	"sync"

	json "github.com/goccy/go-json"
)

// BucketField marks an inbound payload as a platform event worth recording.
const BucketField = "bucket"

// Event is a raw webhook payload, kept exactly as received.
type Event = json.RawMessage

// EventLog is an in-memory, append-only record of received events.
// It is unbounded and does not survive a restart.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

func NewEventLog() *EventLog {
	return &EventLog{events: []Event{}}
}

// Append stores body if it is a JSON object carrying a non-null BucketField.
// It reports whether the event was recorded.
func (l *EventLog) Append(body []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	if v, ok := fields[BucketField]; !ok || string(bytes.TrimSpace(v)) == "null" {
		return false
	}

	ev := make(Event, len(body))
	copy(ev, body)

	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	return true
}

// List returns a snapshot of all events in arrival order.
func (l *EventLog) List() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
