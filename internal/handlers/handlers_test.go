package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/rakshit0111/chat-app/internal/domain"
	"github.com/rakshit0111/chat-app/internal/middleware"
	"github.com/rakshit0111/chat-app/internal/pubsub"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i any) error {
	return tv.v.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New(validator.WithRequiredStructEnabled())}
	return e
}

// newRequest builds an echo context for a handler test. A nil user leaves the
// context unauthenticated.
func newRequest(t *testing.T, method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := newTestEcho().NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserContextKey, user)
	}
	return c, rec
}

// mockUserStore backs the auth and message handlers in tests. Each hook that
// a test leaves nil makes the corresponding call fail loudly.
type mockUserStore struct {
	createFn        func(ctx context.Context, user *domain.User, password string) error
	authenticateFn  func(ctx context.Context, email, password string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.User, error)
	listOthersFn    func(ctx context.Context, excludeID string) ([]domain.User, error)
	updateProfileFn func(ctx context.Context, id, fullName, profilePic string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User, password string) error {
	return m.createFn(ctx, user, password)
}

func (m *mockUserStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return m.authenticateFn(ctx, email, password)
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserStore) ListOthers(ctx context.Context, excludeID string) ([]domain.User, error) {
	return m.listOthersFn(ctx, excludeID)
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, id, fullName, profilePic string) (*domain.User, error) {
	return m.updateProfileFn(ctx, id, fullName, profilePic)
}

type mockMessageStore struct {
	insertFn       func(ctx context.Context, msg *domain.Message) error
	conversationFn func(ctx context.Context, userA, userB string) ([]domain.Message, error)
	groupHistoryFn func(ctx context.Context, groupID string) ([]domain.Message, error)
}

func (m *mockMessageStore) Insert(ctx context.Context, msg *domain.Message) error {
	return m.insertFn(ctx, msg)
}

func (m *mockMessageStore) Conversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	return m.conversationFn(ctx, userA, userB)
}

func (m *mockMessageStore) GroupHistory(ctx context.Context, groupID string) ([]domain.Message, error) {
	return m.groupHistoryFn(ctx, groupID)
}

type mockGroupStore struct {
	createFn       func(ctx context.Context, g *domain.Group) error
	forUserFn      func(ctx context.Context, userID string) ([]domain.Group, error)
	getByIDFn      func(ctx context.Context, id string) (*domain.Group, error)
	updateFn       func(ctx context.Context, id, name, description, profilePic string) (*domain.Group, error)
	addMemberFn    func(ctx context.Context, groupID, memberID string) (*domain.Group, error)
	removeMemberFn func(ctx context.Context, groupID, memberID string) (*domain.Group, error)
	isMemberFn     func(ctx context.Context, groupID, userID string) (bool, error)
}

func (m *mockGroupStore) Create(ctx context.Context, g *domain.Group) error {
	return m.createFn(ctx, g)
}

func (m *mockGroupStore) ForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	return m.forUserFn(ctx, userID)
}

func (m *mockGroupStore) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockGroupStore) Update(ctx context.Context, id, name, description, profilePic string) (*domain.Group, error) {
	return m.updateFn(ctx, id, name, description, profilePic)
}

func (m *mockGroupStore) AddMember(ctx context.Context, groupID, memberID string) (*domain.Group, error) {
	return m.addMemberFn(ctx, groupID, memberID)
}

func (m *mockGroupStore) RemoveMember(ctx context.Context, groupID, memberID string) (*domain.Group, error) {
	return m.removeMemberFn(ctx, groupID, memberID)
}

func (m *mockGroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return m.isMemberFn(ctx, groupID, userID)
}

// mockPublisher records everything published to the bus.
type mockPublisher struct {
	published []pubsub.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func authCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
