package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// sendBufferSize is the per-connection outbound queue depth. A connection
// that cannot drain this many pending events is treated as dead.
const sendBufferSize = 256

// Conn is one live transport connection, owned by the Service from Register
// until Unregister. The transport layer drains Send and writes each payload
// to the socket.
type Conn struct {
	id     string
	userID string

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewConn creates a connection handle owned by the given user.
func NewConn(userID string) *Conn {
	return &Conn{
		id:     uuid.NewString(),
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// ID returns the opaque connection identifier.
func (c *Conn) ID() string { return c.id }

// UserID returns the identity that owns this connection.
func (c *Conn) UserID() string { return c.userID }

// Send returns the outbound queue. The channel is closed when the connection
// is unregistered; no further deliveries happen after that.
func (c *Conn) Send() <-chan []byte { return c.send }

// trySend enqueues a payload without blocking. It reports false if the
// connection is closed or its buffer is full, in which case the caller
// treats the connection as failed.
func (c *Conn) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// close marks the connection dead and closes the outbound queue. Safe to
// call more than once.
func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
