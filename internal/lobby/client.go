package lobby

import (
	"net"
	"sync"

	"github.com/google/uuid"
)

const sendBufferSize = 16

// Client is one live player connection. The read side stays with the
// connection handler; writes go through a buffered channel drained by
// WritePump so a slow peer never blocks a broadcast.
type Client struct {
	ID   string
	Addr string

	// Name and Ready are lobby-scoped session state, guarded by the
	// owning lobby's mutex once the client has joined.
	Name  string
	Ready bool

	conn net.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(conn net.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Addr: conn.RemoteAddr().String(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// WritePump writes queued messages to the connection until the send channel
// closes or a write fails. Runs in its own goroutine per client.
func (c *Client) WritePump() {
	for msg := range c.send {
		if _, err := c.conn.Write(msg); err != nil {
			return
		}
	}
}

// Send queues a message for delivery. Non-blocking: drops if the buffer is
// full or the client is already closed, so one stalled peer cannot hold up
// the rest of a lobby.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// Drop message if channel full
	}
}

// Close shuts the write side and the underlying connection. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.conn.Close()
}
