package session

import "sync"

// Session is one connected client's server-side state, grounded on
// framework/conn/session.go's Session (ConnID/UserID/GamingTopic plus a
// generic data map), trimmed to what the game core itself needs --
// the connector routing field (ConnID) is kept as plain strings
// rather than re-deriving the teacher's multi-node addressing, since
// this module is single-process (SPEC_FULL.md domain stack: etcd/NATS
// dropped).
type Session struct {
	mu        sync.RWMutex
	ConnID    string
	UserID    string
	GameID    string
	Seat      int
	connected bool
}

func NewSession(connID, userID string) *Session {
	return &Session{ConnID: connID, UserID: userID, connected: true}
}

func (s *Session) SetGame(gameID string, seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GameID = gameID
	s.Seat = seat
}

func (s *Session) SetConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = v
}

func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}
