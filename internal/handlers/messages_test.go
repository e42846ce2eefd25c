package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/realtime"
)

var alice = &domain.User{ID: "u1", FullName: "Alice"}

func TestSidebar(t *testing.T) {
	users := &mockUserStore{
		listOthersFn: func(ctx context.Context, excludeID string) ([]domain.User, error) {
			assert.Equal(t, "u1", excludeID)
			return []domain.User{{ID: "u2", FullName: "Bob"}}, nil
		},
	}
	h := NewMessageHandler(users, &mockMessageStore{}, &mockGroupStore{}, &mockPublisher{})

	c, rec := newRequest(t, http.MethodGet, "/api/messages/users", "", alice)
	require.NoError(t, h.Sidebar(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].ID)
}

func TestHistory_PassesBothParticipants(t *testing.T) {
	messages := &mockMessageStore{
		conversationFn: func(ctx context.Context, userA, userB string) ([]domain.Message, error) {
			assert.Equal(t, "u1", userA)
			assert.Equal(t, "u2", userB)
			return []domain.Message{{ID: "m1", SenderID: "u2", ReceiverID: "u1", Text: "hi"}}, nil
		},
	}
	h := NewMessageHandler(&mockUserStore{}, messages, &mockGroupStore{}, &mockPublisher{})

	c, rec := newRequest(t, http.MethodGet, "/api/messages/u2", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	require.NoError(t, h.History(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSend_Direct(t *testing.T) {
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			assert.Equal(t, "u2", id)
			return &domain.User{ID: "u2"}, nil
		},
	}
	var inserted *domain.Message
	messages := &mockMessageStore{
		insertFn: func(ctx context.Context, msg *domain.Message) error {
			msg.ID = "m1"
			inserted = msg
			return nil
		},
	}
	pub := &mockPublisher{}
	h := NewMessageHandler(users, messages, &mockGroupStore{}, pub)

	c, rec := newRequest(t, http.MethodPost, "/api/messages/send/u2", `{"text":"hello"}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	require.NoError(t, h.Send(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, inserted)
	assert.Equal(t, "u1", inserted.SenderID)
	assert.Equal(t, "u2", inserted.ReceiverID)

	// Persisted first, published after.
	require.Len(t, pub.published, 1)
	assert.Equal(t, realtime.TopicDirectMessage, pub.published[0].Topic)

	var published domain.Message
	require.NoError(t, json.Unmarshal(pub.published[0].Payload, &published))
	assert.Equal(t, "m1", published.ID)
	require.NotNil(t, published.Sender)
	assert.Equal(t, "Alice", published.Sender.FullName)
}

func TestSend_DirectUnknownReceiver(t *testing.T) {
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.ErrNotFound
		},
	}
	pub := &mockPublisher{}
	h := NewMessageHandler(users, &mockMessageStore{}, &mockGroupStore{}, pub)

	c, rec := newRequest(t, http.MethodPost, "/api/messages/send/ghost", `{"text":"hello"}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	require.NoError(t, h.Send(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, pub.published)
}

func TestSend_Group(t *testing.T) {
	groups := &mockGroupStore{
		isMemberFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			assert.Equal(t, "g1", groupID)
			assert.Equal(t, "u1", userID)
			return true, nil
		},
	}
	messages := &mockMessageStore{
		insertFn: func(ctx context.Context, msg *domain.Message) error {
			msg.ID = "m2"
			return nil
		},
	}
	pub := &mockPublisher{}
	h := NewMessageHandler(&mockUserStore{}, messages, groups, pub)

	c, rec := newRequest(t, http.MethodPost, "/api/messages/send",
		`{"text":"hi all","groupId":"g1"}`, alice)
	require.NoError(t, h.Send(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, pub.published, 1)
	assert.Equal(t, realtime.TopicGroupMessage, pub.published[0].Topic)
}

func TestSend_GroupNonMember(t *testing.T) {
	groups := &mockGroupStore{
		isMemberFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return false, nil
		},
	}
	pub := &mockPublisher{}
	h := NewMessageHandler(&mockUserStore{}, &mockMessageStore{}, groups, pub)

	c, rec := newRequest(t, http.MethodPost, "/api/messages/send",
		`{"text":"hi all","groupId":"g1"}`, alice)
	require.NoError(t, h.Send(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, pub.published)
}

func TestSend_RequiresTextOrImage(t *testing.T) {
	h := NewMessageHandler(&mockUserStore{}, &mockMessageStore{}, &mockGroupStore{}, &mockPublisher{})

	c, rec := newRequest(t, http.MethodPost, "/api/messages/send/u2", `{}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	require.NoError(t, h.Send(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSend_ImageOnlyIsValid(t *testing.T) {
	users := &mockUserStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}
	messages := &mockMessageStore{
		insertFn: func(ctx context.Context, msg *domain.Message) error { return nil },
	}
	h := NewMessageHandler(users, messages, &mockGroupStore{}, &mockPublisher{})

	c, rec := newRequest(t, http.MethodPost, "/api/messages/send/u2",
		`{"image":"https://cdn.example.com/pic.png"}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	require.NoError(t, h.Send(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGroupHistory_MembersOnly(t *testing.T) {
	groups := &mockGroupStore{
		isMemberFn: func(ctx context.Context, groupID, userID string) (bool, error) {
			return userID == "u1", nil
		},
	}
	messages := &mockMessageStore{
		groupHistoryFn: func(ctx context.Context, groupID string) ([]domain.Message, error) {
			return []domain.Message{{ID: "m1", GroupID: groupID, SenderID: "u1", Text: "hi"}}, nil
		},
	}
	h := NewMessageHandler(&mockUserStore{}, messages, groups, &mockPublisher{})

	c, rec := newRequest(t, http.MethodGet, "/api/messages/groups/g1", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("g1")
	require.NoError(t, h.GroupHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newRequest(t, http.MethodGet, "/api/messages/groups/g1", "", &domain.User{ID: "u9"})
	c.SetParamNames("id")
	c.SetParamValues("g1")
	require.NoError(t, h.GroupHistory(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
