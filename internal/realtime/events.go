package realtime

import "encoding/json"

// Wire event names exchanged with clients over the WebSocket.
const (
	// EventPresenceChanged carries the sorted list of online user IDs.
	EventPresenceChanged = "presenceChanged"
	// EventNewMessage carries a direct message record.
	EventNewMessage = "newMessage"
	// EventNewGroupMessage carries a group message record.
	EventNewGroupMessage = "newGroupMessage"
	// EventGroupUpdated carries an updated group record.
	EventGroupUpdated = "groupUpdated"

	// EventJoinRoom and EventLeaveRoom are inbound control events; their
	// data is the room identifier.
	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
)

// Bus topics connecting the REST layer to the realtime router. Producers
// publish only after the corresponding record has been persisted.
const (
	TopicDirectMessage = "chat.message.direct"
	TopicGroupMessage  = "chat.message.group"
	TopicGroupUpdated  = "chat.group.updated"
)

// Event is the JSON envelope for every frame on the wire.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent marshals an event envelope with the given payload.
func EncodeEvent(name string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Name: name, Data: raw})
}

// DecodeEvent parses a frame received from a client.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(payload, &ev)
	return ev, err
}
