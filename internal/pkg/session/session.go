package session

import (
	"net"

	"github.com/google/uuid"
)

// Session is one accepted participant connection. It is owned by its
// handler goroutine for its whole lifetime.
type Session struct {
	ID       uuid.UUID
	Identity uint8
	Conn     net.Conn
}

// New tags a connection with its assigned identity and a fresh UUID for
// log correlation.
func New(identity uint8, conn net.Conn) *Session {
	return &Session{
		ID:       uuid.New(),
		Identity: identity,
		Conn:     conn,
	}
}

// RemoteAddr returns the peer address as a string.
func (s *Session) RemoteAddr() string {
	return s.Conn.RemoteAddr().String()
}
