package safetx

import "fmt"

// EventType is the lifecycle transition an Event reports.
type EventType string

const (
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventExecuted  EventType = "executed"
	EventMalicious EventType = "malicious"
)

// EventTypes lists every EventType in declaration order.
var EventTypes = []EventType{EventCreated, EventUpdated, EventExecuted, EventMalicious}

// Valid reports whether t is one of the declared event types.
func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventUpdated, EventExecuted, EventMalicious:
		return true
	}
	return false
}

// ParseEventType converts s into an EventType.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown event type %q", s)
	}
	return t, nil
}

// Event is a lifecycle notification about one transaction of one Safe.
// Events are transient: they are built by the poller and consumed once by
// the notification fan-out.
type Event struct {
	Type        EventType
	ChainPrefix string // short chain name, e.g. "eth" or "camp"
	Safe        string
	Tx          TxDetail[Signer]
}
