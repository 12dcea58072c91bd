package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/renamekit/internal/event/topic"
)

// HandlerFunc handles a published event. The event is type-erased; use
// ToEnvelope or a type assertion to read it.
type HandlerFunc func(ctx context.Context, event any) error

// ErrorHandler receives handler errors and recovered panics.
type ErrorHandler func(event any, err error)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithErrorHandler sets the handler for subscriber errors and panics.
func WithErrorHandler(fn ErrorHandler) BusOption {
	return func(b *Bus) {
		b.onError = fn
	}
}

// Stats holds bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	HandlerErrors uint64
	Subscriptions int
}

// Bus delivers events synchronously to matching subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription

	onError ErrorHandler

	published atomic.Uint64
	delivered atomic.Uint64
	errors    atomic.Uint64
}

// NewBus creates an event bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is a registered handler.
type Subscription struct {
	id      string
	pattern topic.Topic
	handler HandlerFunc
	bus     *Bus
	active  atomic.Bool
}

// ID returns the subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Topic returns the subscribed pattern.
func (s *Subscription) Topic() topic.Topic {
	return s.pattern
}

// Cancel removes the subscription from its bus.
func (s *Subscription) Cancel() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

// Subscribe registers fn for events matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, fn HandlerFunc) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		pattern: pattern,
		handler: fn,
		bus:     b,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every matching subscriber before returning.
// Handler errors and panics are reported to the error handler and joined
// into the returned error; they never stop delivery to other subscribers.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	t := tp.EventTopic()

	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if t.Matches(s.pattern) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	b.published.Add(1)

	var errs []error
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		if err := b.deliver(ctx, s, event); err != nil {
			b.errors.Add(1)
			if b.onError != nil {
				b.onError(event, err)
			}
			errs = append(errs, err)
			continue
		}
		b.delivered.Add(1)
	}
	return errors.Join(errs...)
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return s.handler(ctx, event)
}

// Stats returns bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		HandlerErrors: b.errors.Load(),
		Subscriptions: n,
	}
}
