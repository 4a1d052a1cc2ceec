package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies a timer transition and doubles as the routing key
type Type string

const (
	TypeTimerStarted Type = "timer.started"
	TypeTimerStopped Type = "timer.stopped"
)

// Event describes a change of the tracking state
type Event struct {
	ID         uuid.UUID  `json:"id"`
	Type       Type       `json:"type"`
	RecordID   string     `json:"record_id,omitempty"`
	Start      *time.Time `json:"start,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewEvent creates an event with a fresh ID
func NewEvent(typ Type, recordID string, start *time.Time, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		RecordID:   recordID,
		Start:      start,
		OccurredAt: now.UTC(),
	}
}

// Publisher delivers timer events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher discards every event
type NoopPublisher struct{}

// Publish implements Publisher
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher
func (NoopPublisher) Close() error { return nil }
