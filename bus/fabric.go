// Package bus carries room events and commands between worker processes.
//
// A Fabric is a topic based publish/subscribe transport. Messages published by
// one goroutine are delivered to every active subscription of the topic in the
// order they were published.
package bus

import "context"

type Fabric interface {
	// Publish returns once the message has been handed to the transport.
	Publish(ctx context.Context, topic string, msg Message) error
	// Subscribe returns once the subscription is active, so messages published
	// after it returns are guaranteed to be observed.
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

type Subscription interface {
	// Messages is closed when the subscription is closed.
	Messages() <-chan Message
	Close() error
}
