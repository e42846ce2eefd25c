package realtime

// Join subscribes a user to a room's live fan-out. Idempotent. Durable group
// membership is not checked here: the REST layer authorizes the user before
// a join ever reaches this table, so realtime events never wait on a store
// lookup.
func (s *Service) Join(roomID, userID string) {
	if roomID == "" || userID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rooms[roomID] == nil {
		s.rooms[roomID] = make(map[string]struct{})
	}
	s.rooms[roomID][userID] = struct{}{}

	s.logger.Info("user joined room", "room_id", roomID, "user_id", userID,
		"subscribers", len(s.rooms[roomID]))
}

// Leave removes a user's live subscription. No-op if the user was not
// subscribed.
func (s *Service) Leave(roomID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := members[userID]; !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(s.rooms, roomID)
	}

	s.logger.Info("user left room", "room_id", roomID, "user_id", userID)
}

// MembersOf returns a snapshot of the user identities currently subscribed
// to a room. Empty when the room has no live subscribers.
func (s *Service) MembersOf(roomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.rooms[roomID]))
	for userID := range s.rooms[roomID] {
		out = append(out, userID)
	}
	return out
}
