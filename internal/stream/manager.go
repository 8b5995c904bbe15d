// Package stream owns the live websocket channel to the backend: one
// connection per project, deduplicated across rapid re-mounts, with a
// bounded reconnect policy. Inbound frames are validated and handed to a
// per-project handler; outbound commands are fire-and-forget.
package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

const (
	// Delay between reconnect attempts after an unexpected close.
	reconnectDelay = 3 * time.Second

	// Attempts before giving up silently.
	maxReconnects = 5
)

// Handler consumes validated inbound envelopes for one project.
type Handler func(env wire.Envelope)

// Manager is the process-wide connection registry keyed by project id.
// A consumer that mounts while a connection is open or opening reuses it
// instead of dialing a duplicate.
type Manager struct {
	mu    sync.Mutex
	base  string
	delay time.Duration
	limit int
	conns map[int64]*Conn
}

// NewManager creates a registry dialing against base, e.g.
// "ws://localhost:8000".
func NewManager(base string) *Manager {
	return &Manager{
		base:  base,
		delay: reconnectDelay,
		limit: maxReconnects,
		conns: make(map[int64]*Conn),
	}
}

func (m *Manager) url(projectID int64) string {
	return fmt.Sprintf("%s/ws/projects/%d", m.base, projectID)
}

// Connect returns the live connection for a project, opening one only if
// none is open or opening. The check and the registration happen under one
// lock so two mounts in the same turn resolve to a single connection.
// A registered connection that closed or exhausted its retry budget is
// dead weight, not a reason to skip dialing; it gets replaced.
func (m *Manager) Connect(projectID int64, h Handler) *Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.conns[projectID]; ok && !c.dead() {
		return c
	}
	c := newConn(m.url(projectID), h, m.delay, m.limit)
	m.conns[projectID] = c
	go c.dial()
	return c
}

// Disconnect closes a project's connection and suppresses any further
// reconnection. Unknown projects are a no-op.
func (m *Manager) Disconnect(projectID int64) {
	m.mu.Lock()
	c, ok := m.conns[projectID]
	if ok {
		delete(m.conns, projectID)
	}
	m.mu.Unlock()
	if ok {
		c.close()
	}
}

// Send serializes a command to a project's active connection. Commands are
// not queued: with no open connection the command is dropped and false is
// returned.
func (m *Manager) Send(projectID int64, env wire.Envelope) bool {
	m.mu.Lock()
	c, ok := m.conns[projectID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return c.Send(env)
}

// Active reports whether a project currently has an open or opening
// connection in the registry.
func (m *Manager) Active(projectID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[projectID]
	return ok && !c.dead()
}
