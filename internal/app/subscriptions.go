package app

import (
	"context"
	"sync"

	"github.com/dshills/renamekit/internal/event"
	"github.com/dshills/renamekit/internal/event/topic"
	"github.com/dshills/renamekit/internal/rename"
)

// TopicRenameAll matches every rename event.
const TopicRenameAll topic.Topic = "rename.*"

// RenameEvent is a rename event as recorded by the application.
type RenameEvent struct {
	Topic         topic.Topic
	CorrelationID string
	Payload       rename.EventPayload
}

// subscriptionManager owns the application's bus subscriptions.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions []*event.Subscription
	history       []RenameEvent
	logger        *Logger
}

func newSubscriptionManager(logger *Logger) *subscriptionManager {
	return &subscriptionManager{logger: logger}
}

// subscribe registers the rename event log.
func (m *subscriptionManager) subscribe(bus *event.Bus) error {
	sub, err := bus.Subscribe(TopicRenameAll, m.onRename)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.subscriptions = append(m.subscriptions, sub)
	m.mu.Unlock()
	return nil
}

func (m *subscriptionManager) onRename(_ context.Context, ev any) error {
	env := event.ToEnvelope(ev)
	payload, _ := env.Payload.(rename.EventPayload)

	m.mu.Lock()
	m.history = append(m.history, RenameEvent{
		Topic:         env.Topic,
		CorrelationID: env.Metadata.CorrelationID,
		Payload:       payload,
	})
	m.mu.Unlock()

	log := m.logger.WithField("op", env.Metadata.CorrelationID)
	switch env.Topic {
	case rename.TopicStarted:
		log.Debug("rename %q started in %s", payload.Word, payload.Path)
	case rename.TopicCancelled:
		log.Debug("rename %q cancelled", payload.Word)
	case rename.TopicRejected:
		log.Info("rename %q to %q rejected: %s", payload.Word, payload.NewName, payload.Reason)
	case rename.TopicCommitted:
		log.Info("renamed %q to %q", payload.Word, payload.NewName)
	case rename.TopicFailed:
		log.Error("%v", payload.Err)
	default:
		log.Debug("event %s", env.Topic)
	}
	return nil
}

// events returns the recorded rename events.
func (m *subscriptionManager) events() []RenameEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RenameEvent, len(m.history))
	copy(out, m.history)
	return out
}

// unsubscribeAll cancels every subscription.
func (m *subscriptionManager) unsubscribeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subscriptions {
		sub.Cancel()
	}
	m.subscriptions = nil
}
