package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/pubsub"
)

// Router subscribes to the internal bus and resolves each persisted-record
// event to its realtime recipients. Producers publish only after the durable
// write, so anything a client sees arrive live can always be re-fetched.
type Router struct {
	svc    *Service
	logger *slog.Logger
}

// NewRouter wires a router onto the given service and subscribes it to the
// chat topics. One subscription per topic keeps delivery order aligned with
// publish order.
func NewRouter(ctx context.Context, svc *Service, sub pubsub.Subscriber) (*Router, error) {
	r := &Router{
		svc:    svc,
		logger: slog.Default().With("service", "realtime-router"),
	}

	subscriptions := map[string]pubsub.Handler{
		TopicDirectMessage: r.handleDirectMessage,
		TopicGroupMessage:  r.handleGroupMessage,
		TopicGroupUpdated:  r.handleGroupUpdated,
	}
	for topic, handler := range subscriptions {
		if err := sub.Subscribe(ctx, topic, handler); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// handleDirectMessage fans a direct message out to the receiver and, when
// the sender is someone else, to the sender's own connections as well. The
// sender-side delivery is deliberate: a user with the conversation open on a
// second device must see their own sent message echoed live. Each connection
// still gets at most one copy.
func (r *Router) handleDirectMessage(ctx context.Context, msg pubsub.Message) error {
	var m domain.Message
	if err := json.Unmarshal(msg.Payload, &m); err != nil {
		r.logger.Error("bad direct message payload", "error", err)
		return err
	}

	delivered := r.svc.DeliverToUser(m.ReceiverID, EventNewMessage, &m)
	if m.SenderID != m.ReceiverID {
		delivered += r.svc.DeliverToUser(m.SenderID, EventNewMessage, &m)
	}

	r.logger.Info("direct message routed",
		"sender_id", m.SenderID,
		"receiver_id", m.ReceiverID,
		"delivered", delivered)
	return nil
}

// handleGroupMessage fans a group message out to every live subscriber of
// the room, the sender included when subscribed.
func (r *Router) handleGroupMessage(ctx context.Context, msg pubsub.Message) error {
	var m domain.Message
	if err := json.Unmarshal(msg.Payload, &m); err != nil {
		r.logger.Error("bad group message payload", "error", err)
		return err
	}

	delivered := r.svc.DeliverToRoom(m.GroupID, EventNewGroupMessage, &m)

	r.logger.Info("group message routed",
		"group_id", m.GroupID,
		"sender_id", m.SenderID,
		"delivered", delivered)
	return nil
}

// handleGroupUpdated pushes the updated group record to the room so open
// member lists and headers refresh live.
func (r *Router) handleGroupUpdated(ctx context.Context, msg pubsub.Message) error {
	var g domain.Group
	if err := json.Unmarshal(msg.Payload, &g); err != nil {
		r.logger.Error("bad group update payload", "error", err)
		return err
	}

	delivered := r.svc.DeliverToRoom(g.ID, EventGroupUpdated, &g)

	r.logger.Info("group update routed", "group_id", g.ID, "delivered", delivered)
	return nil
}
