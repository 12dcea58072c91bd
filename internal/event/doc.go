// Package event provides a synchronous publish/subscribe bus.
//
// Events are typed values wrapped in Event[T]. Each event carries Metadata
// with a unique id, timestamp and source. Subscribers register a topic
// pattern (see package topic) and receive every published event whose
// topic matches, in subscription order, on the publisher's goroutine.
//
//	bus := event.NewBus()
//	sub, _ := bus.Subscribe("rename.*", func(ctx context.Context, ev any) error {
//		env := event.ToEnvelope(ev)
//		log.Printf("%s %v", env.Topic, env.Payload)
//		return nil
//	})
//	defer sub.Cancel()
//
//	bus.Publish(ctx, event.NewEvent("rename.started", payload, "rename"))
package event
