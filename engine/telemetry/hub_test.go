package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForClients polls until the hub has registered want clients.
func waitForClients(t *testing.T, h Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Cleanup(h.Close)

	a := dial(t, srv)
	b := dial(t, srv)
	waitForClients(t, h, 2)

	stats := grass.FrameStats{Blades: 8192, Visible: 1234, Duration: 3 * time.Millisecond}
	h.Broadcast(stats)
	h.Broadcast(stats)

	for name, conn := range map[string]*websocket.Conn{"a": a, "b": b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for want := uint64(1); want <= 2; want++ {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("client %s ReadJSON() error = %v", name, err)
			}
			if msg.Type != "frame" {
				t.Errorf("client %s Type = %q, want frame", name, msg.Type)
			}
			if msg.Frame != want {
				t.Errorf("client %s Frame = %d, want %d", name, msg.Frame, want)
			}
			if msg.Stats != stats {
				t.Errorf("client %s Stats = %+v, want %+v", name, msg.Stats, stats)
			}
		}
	}
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Cleanup(h.Close)

	conn := dial(t, srv)
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn := dial(t, srv)
	waitForClients(t, h, 1)

	h.Close()
	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount() after Close = %d, want 0", got)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("ReadMessage() after Close error = nil, want close error")
	}

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode after Close = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}

	// a second Close is a no-op
	h.Close()
}

func TestHubRegisterAfterCloseRejectsConn(t *testing.T) {
	h := NewHub().(*hubImpl)
	registered := make(chan bool, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			registered <- true
			return
		}
		defer conn.Close()
		// Close lands between the upgrade and registration
		h.Close()
		registered <- h.register(conn)
	}))
	t.Cleanup(srv.Close)

	dial(t, srv)
	select {
	case ok := <-registered:
		if ok {
			t.Error("register() after Close = true, want false")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
	if got := h.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
}
