package telemetry

import (
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-grass/common"
	"github.com/Carmen-Shannon/oxy-grass/engine/grass"
	"github.com/gorilla/websocket"
)

// writeTimeout bounds a single client write so a stalled client cannot hold up a frame.
const writeTimeout = 250 * time.Millisecond

// Message is the JSON document sent to clients once per broadcast frame.
type Message struct {
	Type  string           `json:"type"`
	Frame uint64           `json:"frame"`
	Stats grass.FrameStats `json:"stats"`
}

type hubImpl struct {
	upgrader websocket.Upgrader

	clientsMu *sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	frame  atomic.Uint64
	closed atomic.Bool
	logger *slog.Logger
}

// Hub streams per-frame statistics to websocket clients. It is an http.Handler; mount it
// on any path and every upgraded connection receives each Broadcast.
type Hub interface {
	http.Handler

	// Broadcast sends one frame's statistics to every connected client. Clients whose
	// write fails are closed and dropped.
	//
	// Parameters:
	//   - stats: the frame statistics to send
	Broadcast(stats grass.FrameStats)

	// ClientCount returns the number of connected clients.
	//
	// Returns:
	//   - int: the client count
	ClientCount() int

	// Close disconnects every client and rejects further upgrades.
	Close()
}

var _ Hub = &hubImpl{}

// NewHub creates a telemetry Hub.
//
// Parameters:
//   - options: functional options to configure the hub
//
// Returns:
//   - Hub: the hub
func NewHub(options ...HubBuilderOption) Hub {
	h := &hubImpl{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clientsMu: &sync.RWMutex{},
		clients:   make(map[*websocket.Conn]*sync.Mutex),
	}
	for _, option := range options {
		option(h)
	}
	h.logger = common.Coalesce(h.logger, common.Logger())
	return h
}

func (h *hubImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "telemetry hub closed", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if !h.register(conn) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		return
	}
	defer h.remove(conn)

	h.logger.Info("telemetry client connected", "remote", r.RemoteAddr)

	// Clients only listen; reading drives close and ping handling until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug("telemetry client disconnected", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

func (h *hubImpl) Broadcast(stats grass.FrameStats) {
	msg := Message{Type: "frame", Frame: h.frame.Add(1), Stats: stats}

	h.clientsMu.RLock()
	var failed []*websocket.Conn
	for client, mu := range h.clients {
		mu.Lock()
		client.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := client.WriteJSON(msg)
		mu.Unlock()
		if err != nil {
			h.logger.Warn("telemetry write failed", "error", err)
			failed = append(failed, client)
		}
	}
	h.clientsMu.RUnlock()

	for _, client := range failed {
		client.Close()
		h.remove(client)
	}
}

func (h *hubImpl) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *hubImpl) Close() {
	if h.closed.Swap(true) {
		return
	}
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for client, mu := range h.clients {
		mu.Lock()
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		mu.Unlock()
		client.Close()
		delete(h.clients, client)
	}
}

// register adds conn to the client set unless the hub has been closed. The closed flag is
// re-checked under the lock so a Close racing the upgrade cannot miss the connection.
func (h *hubImpl) register(conn *websocket.Conn) bool {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if h.closed.Load() {
		return false
	}
	h.clients[conn] = &sync.Mutex{}
	return true
}

func (h *hubImpl) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	delete(h.clients, conn)
	h.clientsMu.Unlock()
}
