package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/pubsub"
)

// stubBus records subscriptions and lets a test invoke handlers directly,
// keeping routing synchronous and deterministic.
type stubBus struct {
	handlers map[string]pubsub.Handler
}

func newStubBus() *stubBus {
	return &stubBus{handlers: make(map[string]pubsub.Handler)}
}

func (b *stubBus) Subscribe(ctx context.Context, topic string, handler pubsub.Handler) error {
	b.handlers[topic] = handler
	return nil
}

func (b *stubBus) Close() error { return nil }

func (b *stubBus) deliver(t *testing.T, topic string, payload any) {
	t.Helper()
	handler, ok := b.handlers[topic]
	require.True(t, ok, "no handler subscribed for topic %s", topic)
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), pubsub.Message{Topic: topic, Payload: data}))
}

func TestRouter_DirectMessage_DualDelivery(t *testing.T) {
	svc := NewService()
	bus := newStubBus()
	_, err := NewRouter(context.Background(), svc, bus)
	require.NoError(t, err)

	a1 := NewConn("alice")
	a2 := NewConn("alice")
	b1 := NewConn("bob")
	svc.Register(a1)
	svc.Register(a2)
	svc.Register(b1)

	bus.deliver(t, TopicDirectMessage, domain.Message{
		ID:         "m1",
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "hello",
		CreatedAt:  time.Now(),
	})

	// Receiver and both of the sender's devices each got exactly one copy.
	assert.Len(t, eventsNamed(drain(t, b1), EventNewMessage), 1)
	assert.Len(t, eventsNamed(drain(t, a1), EventNewMessage), 1)
	assert.Len(t, eventsNamed(drain(t, a2), EventNewMessage), 1)
}

func TestRouter_DirectMessage_SelfMessageSingleFanOut(t *testing.T) {
	svc := NewService()
	bus := newStubBus()
	_, err := NewRouter(context.Background(), svc, bus)
	require.NoError(t, err)

	a1 := NewConn("alice")
	a2 := NewConn("alice")
	svc.Register(a1)
	svc.Register(a2)

	bus.deliver(t, TopicDirectMessage, domain.Message{
		ID:         "m1",
		SenderID:   "alice",
		ReceiverID: "alice",
		Text:       "note to self",
		CreatedAt:  time.Now(),
	})

	// Sender == receiver must not double the fan-out.
	assert.Len(t, eventsNamed(drain(t, a1), EventNewMessage), 1)
	assert.Len(t, eventsNamed(drain(t, a2), EventNewMessage), 1)
}

func TestRouter_DirectMessage_OfflineReceiverStillEchoesSender(t *testing.T) {
	svc := NewService()
	bus := newStubBus()
	_, err := NewRouter(context.Background(), svc, bus)
	require.NoError(t, err)

	a1 := NewConn("alice")
	svc.Register(a1)

	bus.deliver(t, TopicDirectMessage, domain.Message{
		ID:         "m1",
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "are you there?",
		CreatedAt:  time.Now(),
	})

	assert.Len(t, eventsNamed(drain(t, a1), EventNewMessage), 1)
}

func TestRouter_GroupMessage_ReachesLiveSubscribers(t *testing.T) {
	svc := NewService()
	bus := newStubBus()
	_, err := NewRouter(context.Background(), svc, bus)
	require.NoError(t, err)

	alice := NewConn("alice")
	bob := NewConn("bob")
	carol := NewConn("carol")
	svc.Register(alice)
	svc.Register(bob)
	svc.Register(carol)
	svc.Join("g1", "alice")
	svc.Join("g1", "bob")

	bus.deliver(t, TopicGroupMessage, domain.Message{
		ID:        "m2",
		SenderID:  "alice",
		GroupID:   "g1",
		Text:      "hi everyone",
		CreatedAt: time.Now(),
	})

	assert.Len(t, eventsNamed(drain(t, alice), EventNewGroupMessage), 1)
	assert.Len(t, eventsNamed(drain(t, bob), EventNewGroupMessage), 1)
	assert.Empty(t, eventsNamed(drain(t, carol), EventNewGroupMessage))
}

func TestRouter_GroupUpdated_PushesToRoom(t *testing.T) {
	svc := NewService()
	bus := newStubBus()
	_, err := NewRouter(context.Background(), svc, bus)
	require.NoError(t, err)

	alice := NewConn("alice")
	svc.Register(alice)
	svc.Join("g1", "alice")

	bus.deliver(t, TopicGroupUpdated, domain.Group{
		ID:      "g1",
		Name:    "renamed",
		Members: []string{"alice", "bob"},
		Admin:   "alice",
	})

	updates := eventsNamed(drain(t, alice), EventGroupUpdated)
	require.Len(t, updates, 1)

	var g domain.Group
	require.NoError(t, json.Unmarshal(updates[0].Data, &g))
	assert.Equal(t, "renamed", g.Name)
}

func TestRouter_MalformedPayloadIsRejected(t *testing.T) {
	svc := NewService()
	bus := newStubBus()
	_, err := NewRouter(context.Background(), svc, bus)
	require.NoError(t, err)

	handler := bus.handlers[TopicDirectMessage]
	err = handler(context.Background(), pubsub.Message{
		Topic:   TopicDirectMessage,
		Payload: []byte("not json"),
	})
	assert.Error(t, err)
}
