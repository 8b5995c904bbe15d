package stream

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Inbound silence tolerated before the read loop gives up.
	readWait = 60 * time.Second

	// Application-level heartbeat period (must be less than readWait;
	// the server answers with a pong event).
	pingPeriod = 30 * time.Second
)

// Conn is one live channel to a project's event stream.
type Conn struct {
	url     string
	handler Handler
	delay   time.Duration
	limit   int

	mu        sync.Mutex
	ws        *websocket.Conn
	retries   int
	closed    bool
	exhausted bool

	opened     chan struct{}
	openSignal bool

	writeMu sync.Mutex
}

func newConn(url string, h Handler, delay time.Duration, limit int) *Conn {
	return &Conn{url: url, handler: h, delay: delay, limit: limit, opened: make(chan struct{})}
}

// dial opens the websocket and starts the read and heartbeat loops.
// A failed dial counts as an unexpected close and feeds the retry policy.
func (c *Conn) dial() {
	ws, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		log.Printf("stream: dial %s failed: %v", c.url, err)
		c.scheduleReconnect()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return
	}
	c.ws = ws
	c.retries = 0
	if !c.openSignal {
		c.openSignal = true
		close(c.opened)
	}
	c.mu.Unlock()

	go c.readLoop(ws)
	go c.pingLoop(ws)
}

// readLoop consumes frames until the connection drops. Malformed frames
// are logged and dropped; they never stall the loop or the retry policy.
func (c *Conn) readLoop(ws *websocket.Conn) {
	ws.SetReadDeadline(time.Now().Add(readWait))
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}
		ws.SetReadDeadline(time.Now().Add(readWait))

		env, err := wire.Decode(raw)
		if err != nil {
			log.Printf("stream: dropping frame: %v", err)
			continue
		}
		if c.handler != nil {
			c.handler(env)
		}
	}

	ws.Close()
	c.mu.Lock()
	if c.ws == ws {
		c.ws = nil
	}
	c.mu.Unlock()
	c.scheduleReconnect()
}

// pingLoop keeps the channel warm while this websocket is current.
func (c *Conn) pingLoop(ws *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		current := c.ws == ws
		c.mu.Unlock()
		if !current {
			return
		}
		if !c.Send(wire.PingCommand()) {
			return
		}
	}
}

// scheduleReconnect applies the bounded retry policy. A user-initiated
// close pins the counter at the ceiling, so nothing is scheduled. Once the
// budget is spent the connection marks itself exhausted; the registry
// replaces it on the next mount instead of handing out a dead channel.
func (c *Conn) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.retries >= c.limit {
		c.exhausted = true
		return
	}
	c.retries++
	time.AfterFunc(c.delay, c.dial)
}

// Send writes one command frame. Delivery is at-most-once: with no open
// websocket, or on a write error, the command is dropped without retry.
func (c *Conn) Send(env wire.Envelope) bool {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(env); err != nil {
		log.Printf("stream: write failed: %v", err)
		return false
	}
	return true
}

// close marks the connection non-reconnectable and closes the socket.
func (c *Conn) close() {
	c.mu.Lock()
	c.closed = true
	c.retries = c.limit
	ws := c.ws
	c.ws = nil
	c.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// dead reports whether this connection can never produce another open
// websocket: either the user closed it or the retry budget is spent.
func (c *Conn) dead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed || c.exhausted
}

// Open reports whether the websocket is currently established (as opposed
// to opening or waiting out a reconnect delay).
func (c *Conn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil
}

// Opened returns a channel that is closed once the websocket first
// establishes, so callers can wait for the channel with a timeout instead
// of polling.
func (c *Conn) Opened() <-chan struct{} {
	return c.opened
}
