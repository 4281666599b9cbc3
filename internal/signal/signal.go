// Package signal provides synchronous change notification with explicit, deterministic disconnection.
package signal

import "sync"

// Connection is the handle returned by Connect. Disconnect is idempotent.
type Connection struct {
	mu     sync.Mutex
	closed bool
	drop   func()
}

func (c *Connection) Disconnect() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	drop := c.drop
	c.drop = nil
	c.mu.Unlock()
	if drop != nil {
		drop()
	}
}

func (c *Connection) Connected() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

type slot[T any] struct {
	fn   func(T)
	conn *Connection
}

// Signal fans a value out to connected slots in connection order.
// The zero value is ready to use.
type Signal[T any] struct {
	mu    sync.Mutex
	slots []*slot[T]
}

func (s *Signal[T]) Connect(fn func(T)) *Connection {
	sl := &slot[T]{fn: fn}
	c := &Connection{}
	c.drop = func() { s.remove(sl) }
	sl.conn = c

	s.mu.Lock()
	s.slots = append(s.slots, sl)
	s.mu.Unlock()
	return c
}

// Emit calls every slot connected when Emit started. Slots disconnected
// during the emission are skipped; slots connected during it are not called.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	snap := make([]*slot[T], len(s.slots))
	copy(snap, s.slots)
	s.mu.Unlock()

	for _, sl := range snap {
		if !sl.conn.Connected() {
			continue
		}
		sl.fn(v)
	}
}

// Len reports the number of connected slots.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Signal[T]) remove(target *slot[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl == target {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}

// Group collects connections so they can be released together.
type Group struct {
	conns []*Connection
}

func (g *Group) Add(cs ...*Connection) {
	for _, c := range cs {
		if c != nil {
			g.conns = append(g.conns, c)
		}
	}
}

func (g *Group) Len() int { return len(g.conns) }

// DisconnectAll releases every connection in the group and empties it.
func (g *Group) DisconnectAll() {
	conns := g.conns
	g.conns = nil
	for _, c := range conns {
		c.Disconnect()
	}
}
