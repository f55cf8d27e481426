package keyring

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// EventType identifies a keyring lifecycle event.
type EventType string

const (
	EventAccountCreated  EventType = "accountCreated"
	EventAccountUpdated  EventType = "accountUpdated"
	EventAccountDeleted  EventType = "accountDeleted"
	EventRequestApproved EventType = "requestApproved"
	EventRequestRejected EventType = "requestRejected"
)

// Event is delivered to the host runtime for every keyring mutation.
type Event struct {
	Type    EventType        `json:"type"`
	Account *AccountMetadata `json:"account,omitempty"`
	ID      string           `json:"id,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
}

// Emitter delivers lifecycle events to the host runtime. Delivery is
// best-effort; a failed emit never rolls back the mutation that
// produced the event.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// ChannelEmitter buffers events for the host runtime to drain.
type ChannelEmitter struct {
	ch chan Event
}

func NewChannelEmitter(size int) *ChannelEmitter {
	return &ChannelEmitter{ch: make(chan Event, size)}
}

func (e *ChannelEmitter) Emit(ctx context.Context, event Event) error {
	select {
	case e.ch <- event:
		return nil
	default:
		return errors.New("event buffer is full")
	}
}

// Events exposes the stream for a consumer that wants to block.
func (e *ChannelEmitter) Events() <-chan Event {
	return e.ch
}

// Drain returns all currently buffered events without blocking.
func (e *ChannelEmitter) Drain() []Event {
	var events []Event
	for {
		select {
		case event := <-e.ch:
			events = append(events, event)
		default:
			return events
		}
	}
}

// NopEmitter discards events; used by tests that do not assert on
// them.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, event Event) error { return nil }
