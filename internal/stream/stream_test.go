package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexjunanjing-2/openOii-doubao/internal/wire"
)

var upgrader = websocket.Upgrader{}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// newStreamServer runs an http test server that upgrades each request and
// hands the socket to serve. It returns a manager pointed at the server
// with a short retry delay, plus the dial counter.
func newStreamServer(t *testing.T, serve func(ws *websocket.Conn)) (*Manager, *atomic.Int64) {
	t.Helper()
	var dials atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serve(ws)
	}))
	t.Cleanup(srv.Close)

	m := NewManager(strings.Replace(srv.URL, "http", "ws", 1))
	m.delay = 10 * time.Millisecond
	return m, &dials
}

func holdOpen(ws *websocket.Conn) {
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			ws.Close()
			return
		}
	}
}

func TestConnectReusesLiveConnection(t *testing.T) {
	m, dials := newStreamServer(t, holdOpen)

	first := m.Connect(1, nil)
	second := m.Connect(1, nil)
	if first != second {
		t.Error("expected second mount to reuse the opening connection")
	}

	waitFor(t, time.Second, first.Open)
	if n := dials.Load(); n != 1 {
		t.Errorf("expected a single dial, got %d", n)
	}
	if !m.Active(1) {
		t.Error("expected project registered as active")
	}
}

func TestSeparateProjectsGetSeparateConnections(t *testing.T) {
	m, dials := newStreamServer(t, holdOpen)

	a := m.Connect(1, nil)
	b := m.Connect(2, nil)
	if a == b {
		t.Error("expected distinct connections per project")
	}
	waitFor(t, time.Second, func() bool { return dials.Load() == 2 })
}

func TestHandlerReceivesDecodedFrames(t *testing.T) {
	received := make(chan wire.Envelope, 8)
	m, _ := newStreamServer(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"run_started","data":{"run_id":42,"project_id":1}}`))
		holdOpen(ws)
	})

	m.Connect(1, func(env wire.Envelope) { received <- env })

	select {
	case env := <-received:
		if env.Type != wire.EventRunStarted {
			t.Errorf("expected run_started, got %s", env.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never received the frame")
	}
}

func TestMalformedFramesAreDroppedNotFatal(t *testing.T) {
	received := make(chan wire.Envelope, 8)
	m, _ := newStreamServer(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.TextMessage, []byte(`this is not json`))
		ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"totally_unknown_event","data":{}}`))
		ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"run_completed","data":{"run_id":42}}`))
		holdOpen(ws)
	})

	m.Connect(1, func(env wire.Envelope) { received <- env })

	select {
	case env := <-received:
		if env.Type != wire.EventRunCompleted {
			t.Errorf("expected only the valid frame through, got %s", env.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid frame after garbage never arrived")
	}
	select {
	case env := <-received:
		t.Errorf("unexpected extra frame %s", env.Type)
	default:
	}
}

func TestReconnectGivesUpAtCeiling(t *testing.T) {
	var dials atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		http.Error(w, "no websocket here", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	m := NewManager(strings.Replace(srv.URL, "http", "ws", 1))
	m.delay = 10 * time.Millisecond
	m.Connect(1, nil)

	// Initial dial plus the bounded retries, then silence.
	want := int64(1 + maxReconnects)
	waitFor(t, 3*time.Second, func() bool { return dials.Load() == want })
	time.Sleep(100 * time.Millisecond)
	if n := dials.Load(); n != want {
		t.Errorf("expected dialing to stop at %d attempts, got %d", want, n)
	}
}

func TestConnectAfterRetryExhaustionDialsFresh(t *testing.T) {
	var dials atomic.Int64
	rejected := int64(1 + maxReconnects)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dials.Add(1) <= rejected {
			http.Error(w, "backend down", http.StatusServiceUnavailable)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		holdOpen(ws)
	}))
	t.Cleanup(srv.Close)

	m := NewManager(strings.Replace(srv.URL, "http", "ws", 1))
	m.delay = 10 * time.Millisecond

	stale := m.Connect(1, nil)
	waitFor(t, 3*time.Second, func() bool { return dials.Load() == rejected })
	time.Sleep(50 * time.Millisecond)

	if stale.Open() {
		t.Fatal("connection opened despite every dial being rejected")
	}
	if m.Active(1) {
		t.Error("expected exhausted connection reported inactive")
	}

	// The backend is back; a new mount must dial instead of reusing the
	// spent connection.
	fresh := m.Connect(1, nil)
	if fresh == stale {
		t.Fatal("expected a fresh connection after retry exhaustion")
	}
	waitFor(t, 2*time.Second, fresh.Open)
	if !m.Active(1) {
		t.Error("expected project active again after recovery")
	}
}

func TestOpenedSignalsEstablishment(t *testing.T) {
	m, _ := newStreamServer(t, holdOpen)

	c := m.Connect(1, nil)
	select {
	case <-c.Opened():
	case <-time.After(2 * time.Second):
		t.Fatal("open notification never fired")
	}
	if !c.Open() {
		t.Error("expected socket established when the notification fires")
	}
}

func TestSuccessfulOpenResetsRetryBudget(t *testing.T) {
	var dials atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := dials.Add(1)
		if n <= 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		holdOpen(ws)
	}))
	t.Cleanup(srv.Close)

	m := NewManager(strings.Replace(srv.URL, "http", "ws", 1))
	m.delay = 10 * time.Millisecond
	c := m.Connect(1, nil)

	waitFor(t, 3*time.Second, c.Open)
	c.mu.Lock()
	retries := c.retries
	c.mu.Unlock()
	if retries != 0 {
		t.Errorf("expected retry counter reset on success, got %d", retries)
	}
}

func TestDisconnectSuppressesReconnect(t *testing.T) {
	m, dials := newStreamServer(t, holdOpen)

	c := m.Connect(1, nil)
	waitFor(t, time.Second, c.Open)

	m.Disconnect(1)

	if m.Active(1) {
		t.Error("expected project inactive after disconnect")
	}
	time.Sleep(100 * time.Millisecond)
	if n := dials.Load(); n != 1 {
		t.Errorf("expected no redial after user disconnect, got %d dials", n)
	}
	if ok := m.Send(1, wire.PingCommand()); ok {
		t.Error("expected send to drop after disconnect")
	}
}

func TestConnectAfterDisconnectDialsFresh(t *testing.T) {
	m, dials := newStreamServer(t, holdOpen)

	c := m.Connect(1, nil)
	waitFor(t, time.Second, c.Open)
	m.Disconnect(1)

	c2 := m.Connect(1, nil)
	if c2 == c {
		t.Error("expected a fresh connection after disconnect")
	}
	waitFor(t, time.Second, c2.Open)
	if n := dials.Load(); n != 2 {
		t.Errorf("expected 2 dials, got %d", n)
	}
}

func TestSendWithoutConnectionDrops(t *testing.T) {
	m := NewManager("ws://localhost:0")
	if m.Send(99, wire.PingCommand()) {
		t.Error("expected send to an unknown project to report a drop")
	}
}

func TestConfirmCommandRoundTrip(t *testing.T) {
	frames := make(chan []byte, 1)
	m, _ := newStreamServer(t, func(ws *websocket.Conn) {
		_, raw, err := ws.ReadMessage()
		if err == nil {
			frames <- raw
		}
		holdOpen(ws)
	})

	c := m.Connect(1, nil)
	waitFor(t, time.Second, c.Open)

	if !m.Send(1, wire.ConfirmCommand(42, "looks good")) {
		t.Fatal("expected send to succeed on an open connection")
	}

	select {
	case raw := <-frames:
		got := string(raw)
		for _, want := range []string{`"confirm"`, `"run_id":42`, `"looks good"`} {
			if !strings.Contains(got, want) {
				t.Errorf("frame %s missing %s", got, want)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the confirm frame")
	}
}
