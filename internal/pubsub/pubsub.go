package pubsub

import "context"

// Message is the unit passed between components on the internal bus.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "chat.message.direct").
	Topic string
	// UserID identifies the user who initiated the message, when known.
	UserID string
	// Payload contains the raw message data, typically JSON.
	Payload []byte
	// Metadata carries arbitrary key-value context (e.g., timestamps).
	Metadata map[string]string
}

// Handler processes a received message. A non-nil error marks the message as
// unprocessed.
type Handler func(ctx context.Context, msg Message) error

// Publisher is the contract for sending messages to the bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber is the contract for receiving messages from the bus.
type Subscriber interface {
	// Subscribe registers the handler for a topic. It returns once the
	// subscription is active; handling runs in the background.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
