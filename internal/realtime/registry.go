package realtime

import (
	"log/slog"
	"sort"
	"sync"
)

// Service tracks live connections and room subscriptions and fans events out
// to them. It replaces the usual module-level connection map with one
// explicitly constructed instance whose lifetime is tied to the server.
//
// A single mutex guards both maps. Every mutation and every dispatch runs as
// one non-overlapping critical section of map updates plus non-blocking
// sends, so delivery order per user or room matches invocation order. Slow
// work (persistence, authorization) happens in the callers before they reach
// this service.
type Service struct {
	logger *slog.Logger

	mu    sync.Mutex
	conns map[*Conn]struct{}            // every registered connection
	users map[string]map[*Conn]struct{} // userID -> its open connections
	rooms map[string]map[string]struct{} // roomID -> live-subscriber userIDs
}

// NewService creates an empty realtime service.
func NewService() *Service {
	return &Service{
		logger: slog.Default().With("service", "realtime"),
		conns:  make(map[*Conn]struct{}),
		users:  make(map[string]map[*Conn]struct{}),
		rooms:  make(map[string]map[string]struct{}),
	}
}

// Register records the connection under its owning user and broadcasts the
// new presence set. Registering the same handle twice is a no-op.
func (s *Service) Register(c *Conn) {
	if c == nil || c.UserID() == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conns[c]; ok {
		return
	}
	s.conns[c] = struct{}{}
	if s.users[c.UserID()] == nil {
		s.users[c.UserID()] = make(map[*Conn]struct{})
	}
	s.users[c.UserID()][c] = struct{}{}

	s.logger.Info("connection registered",
		"user_id", c.UserID(),
		"conn_id", c.ID(),
		"user_connections", len(s.users[c.UserID()]))

	s.broadcastPresenceLocked()
}

// Unregister removes the connection. When it was the user's last connection
// the user leaves every room and disappears from the presence set. Unknown
// handles are ignored; a connection that drops before completing its
// handshake was never registered.
func (s *Service) Unregister(c *Conn) {
	if c == nil {
		return
	}
	s.mu.Lock()
	if _, ok := s.conns[c]; !ok {
		// Never registered, so not ours to touch.
		s.mu.Unlock()
		return
	}
	s.removeConnLocked(c)
	s.broadcastPresenceLocked()
	s.mu.Unlock()

	c.close()
}

// removeConnLocked drops a connection from both indexes and, if it was the
// user's last one, cascades the auto-leave from all rooms. Callers hold the
// lock and are responsible for the presence broadcast.
func (s *Service) removeConnLocked(c *Conn) {
	delete(s.conns, c)

	userConns := s.users[c.UserID()]
	if userConns == nil {
		return
	}
	delete(userConns, c)
	if len(userConns) > 0 {
		s.logger.Info("connection unregistered",
			"user_id", c.UserID(),
			"conn_id", c.ID(),
			"remaining_connections", len(userConns))
		return
	}

	delete(s.users, c.UserID())
	for roomID, members := range s.rooms {
		delete(members, c.UserID())
		if len(members) == 0 {
			delete(s.rooms, roomID)
		}
	}
	s.logger.Info("user went offline", "user_id", c.UserID(), "conn_id", c.ID())
}

// ConnectionsFor returns a snapshot of the user's open connections. An empty
// result means the user is offline, which is a normal state, not an error.
func (s *Service) ConnectionsFor(userID string) []*Conn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Conn, 0, len(s.users[userID]))
	for c := range s.users[userID] {
		out = append(out, c)
	}
	return out
}

// OnlineUsers returns the sorted set of users with at least one open
// connection.
func (s *Service) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onlineUsersLocked()
}

func (s *Service) onlineUsersLocked() []string {
	out := make([]string, 0, len(s.users))
	for userID := range s.users {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}
