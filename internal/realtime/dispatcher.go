package realtime

// DeliverToUser sends the event to every open connection of one user and
// returns the number of connections reached. Zero means the user is offline;
// the durable record is the source of truth and the client catches up on its
// next fetch.
func (s *Service) DeliverToUser(userID, event string, data any) int {
	payload, err := EncodeEvent(event, data)
	if err != nil {
		s.logger.Error("failed to encode event", "event", event, "error", err)
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delivered, failed := s.sendToConnsLocked(s.users[userID], payload)
	s.reapLocked(failed)

	s.logger.Debug("delivered to user", "user_id", userID, "event", event, "count", delivered)
	return delivered
}

// DeliverToRoom sends the event to every connection of every user currently
// subscribed to the room, skipping any user listed in exclude. The exclusion
// lets a caller that already delivered to the originator avoid handing them
// a second copy.
func (s *Service) DeliverToRoom(roomID, event string, data any, exclude ...string) int {
	payload, err := EncodeEvent(event, data)
	if err != nil {
		s.logger.Error("failed to encode event", "event", event, "error", err)
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delivered := 0
	var failed []*Conn
	for userID := range s.rooms[roomID] {
		if excluded(userID, exclude) {
			continue
		}
		n, bad := s.sendToConnsLocked(s.users[userID], payload)
		delivered += n
		failed = append(failed, bad...)
	}
	s.reapLocked(failed)

	s.logger.Debug("delivered to room", "room_id", roomID, "event", event, "count", delivered)
	return delivered
}

// DeliverToAll sends the event to every registered connection. Used for the
// presence broadcast.
func (s *Service) DeliverToAll(event string, data any) int {
	payload, err := EncodeEvent(event, data)
	if err != nil {
		s.logger.Error("failed to encode event", "event", event, "error", err)
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delivered, failed := s.sendToConnsLocked(s.conns, payload)
	s.reapLocked(failed)
	return delivered
}

// sendToConnsLocked enqueues the payload on each connection. Connections
// whose buffer is full or whose transport has gone away are returned as
// failed; one bad connection never aborts delivery to the rest.
func (s *Service) sendToConnsLocked(conns map[*Conn]struct{}, payload []byte) (int, []*Conn) {
	delivered := 0
	var failed []*Conn
	for c := range conns {
		if c.trySend(payload) {
			delivered++
		} else {
			failed = append(failed, c)
		}
	}
	return delivered, failed
}

// reapLocked runs the unregister path for connections that failed a send.
// Removing a user's last connection changes the presence set, so the
// broadcast follows.
func (s *Service) reapLocked(failed []*Conn) {
	if len(failed) == 0 {
		return
	}
	for _, c := range failed {
		if _, ok := s.conns[c]; !ok {
			continue
		}
		s.logger.Warn("dropping unresponsive connection",
			"user_id", c.UserID(), "conn_id", c.ID())
		s.removeConnLocked(c)
		c.close()
	}
	s.broadcastPresenceLocked()
}

// broadcastPresenceLocked pushes the current sorted online-user set to every
// connection. Sends that fail shrink the set, so the loop reruns until a
// broadcast goes through cleanly; each pass strictly removes connections, so
// it terminates.
func (s *Service) broadcastPresenceLocked() {
	for {
		payload, err := EncodeEvent(EventPresenceChanged, s.onlineUsersLocked())
		if err != nil {
			s.logger.Error("failed to encode presence update", "error", err)
			return
		}

		_, failed := s.sendToConnsLocked(s.conns, payload)
		if len(failed) == 0 {
			return
		}
		for _, c := range failed {
			s.removeConnLocked(c)
			c.close()
		}
	}
}

// Shutdown closes every connection and clears all state.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.conns {
		c.close()
	}
	s.conns = make(map[*Conn]struct{})
	s.users = make(map[string]map[*Conn]struct{})
	s.rooms = make(map[string]map[string]struct{})
}

func excluded(userID string, exclude []string) bool {
	for _, e := range exclude {
		if e == userID {
			return true
		}
	}
	return false
}
