package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/renamekit/internal/event/topic"
)

// Event represents an event in the system.
// Events are immutable once created.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "rename.committed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the module that published the event.
	Source string

	// CorrelationID links related events, e.g. all events of one rename.
	CorrelationID string
}

// NewEvent creates a new event with the given type and payload.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// EventMetadata returns the event's metadata for type-erased handling.
func (e Event[T]) EventMetadata() Metadata {
	return e.Metadata
}

// WithCorrelation returns a copy of the event with a correlation ID set.
func (e Event[T]) WithCorrelation(correlationID string) Event[T] {
	e.Metadata.CorrelationID = correlationID
	return e
}

// TopicProvider is implemented by types that can provide their topic.
type TopicProvider interface {
	EventTopic() topic.Topic
}

// MetadataProvider is implemented by types that can provide their metadata.
type MetadataProvider interface {
	EventMetadata() Metadata
}

// payloadProvider is implemented by Event[T] for type-erased payload access.
type payloadProvider interface {
	eventPayload() any
}

func (e Event[T]) eventPayload() any {
	return e.Payload
}

// Envelope is a type-erased view of an event.
type Envelope struct {
	Topic    topic.Topic
	Payload  any
	Metadata Metadata
}

// ToEnvelope converts an event to an Envelope.
// Returns an empty Envelope if the value does not provide a topic.
func ToEnvelope(event any) Envelope {
	tp, ok := event.(TopicProvider)
	if !ok {
		return Envelope{}
	}

	env := Envelope{
		Topic:   tp.EventTopic(),
		Payload: event,
	}
	if pp, ok := event.(payloadProvider); ok {
		env.Payload = pp.eventPayload()
	}
	if mp, ok := event.(MetadataProvider); ok {
		env.Metadata = mp.EventMetadata()
	}
	return env
}
