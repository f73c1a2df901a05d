package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mescon/Unqlocked/internal/logger"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
)

// Message types sent to browser clients
const (
	MsgPing    = "ping"
	MsgMatrix  = "matrix"
	MsgSprites = "sprites"
	MsgLog     = "log"
)

// Message is the envelope for everything written to a client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Frame is the most recent picture drawn on the hub.
type Frame struct {
	Matrix    [][]bool  `json:"matrix"`
	Sprites   *int      `json:"sprites"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientGauge receives the number of connected clients.
type ClientGauge interface {
	SetConnectedClients(n int)
}

// newUpgrader returns an upgrader with origin validation.
// corsOrigins is empty for same-origin only, "*" for any origin, or a
// comma-separated allow list.
func newUpgrader(corsOrigins string) websocket.Upgrader {
	allowedOrigins := make(map[string]bool)
	if corsOrigins != "" && corsOrigins != "*" {
		for _, origin := range strings.Split(corsOrigins, ",") {
			allowedOrigins[strings.TrimSpace(origin)] = true
		}
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if corsOrigins == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			if corsOrigins == "" {
				if origin == "" {
					return true // No origin header = same-origin request
				}
				return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
			}
			return allowedOrigins[origin]
		},
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	done chan struct{}
}

// WebSocketHub is the browser rendering surface. Every frame a face draws is
// pushed to all connected clients and kept for the ones that join later. The
// hub counts as visible while at least one client is connected.
type WebSocketHub struct {
	mu        sync.Mutex
	clients   map[*client]bool
	matrix    [][]bool
	sprites   *int
	updatedAt time.Time
	onConnect func()
	gauge     ClientGauge

	upgrader websocket.Upgrader
	log      logger.Logger
	logCh    chan logger.LogEntry
	logDone  chan struct{}
	closed   bool
}

// NewWebSocketHub creates a hub. When streamLogs is set, log entries are
// forwarded to clients as "log" messages.
func NewWebSocketHub(corsOrigins string, log logger.Logger, streamLogs bool) *WebSocketHub {
	if log == nil {
		log = logger.Nop()
	}
	h := &WebSocketHub{
		clients:  make(map[*client]bool),
		upgrader: newUpgrader(corsOrigins),
		log:      log,
	}

	if streamLogs {
		h.logCh = logger.Subscribe()
		h.logDone = make(chan struct{})
		go func() {
			defer close(h.logDone)
			for entry := range h.logCh {
				h.broadcast(Message{Type: MsgLog, Data: entry})
			}
		}()
	}
	return h
}

// OnConnect registers fn to run after every new client is registered. It is
// called outside the hub lock.
func (h *WebSocketHub) OnConnect(fn func()) {
	h.mu.Lock()
	h.onConnect = fn
	h.mu.Unlock()
}

// SetGauge reports client counts to g.
func (h *WebSocketHub) SetGauge(g ClientGauge) {
	h.mu.Lock()
	h.gauge = g
	h.mu.Unlock()
}

// DrawMatrix broadcasts the highlight grid and caches it.
func (h *WebSocketHub) DrawMatrix(m [][]bool) {
	snapshot := make([][]bool, len(m))
	for i, row := range m {
		snapshot[i] = append([]bool(nil), row...)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.matrix = snapshot
	h.updatedAt = time.Now()
	h.broadcastLocked(Message{Type: MsgMatrix, Data: snapshot})
}

// DrawSprites broadcasts the minute dot count and caches it.
func (h *WebSocketHub) DrawSprites(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sprites = &n
	h.updatedAt = time.Now()
	h.broadcastLocked(Message{Type: MsgSprites, Data: n})
}

// IsVisible reports whether anyone is watching.
func (h *WebSocketHub) IsVisible() bool {
	return h.ClientCount() > 0
}

// LastFrame returns the cached frame.
func (h *WebSocketHub) LastFrame() Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := Frame{Matrix: h.matrix, UpdatedAt: h.updatedAt}
	if h.sprites != nil {
		n := *h.sprites
		f.Sprites = &n
	}
	return f
}

// ClientCount returns the number of connected WebSocket clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops forwarding logs.
func (h *WebSocketHub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()

	if h.logCh != nil {
		logger.Unsubscribe(h.logCh)
		<-h.logDone
	}
	h.reportCount(0)
}

// HandleConnection upgrades the request and serves the client until it goes away.
func (h *WebSocketHub) HandleConnection(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	cl := &client{id: uuid.NewString(), conn: ws, done: make(chan struct{})}
	onConnect, ok := h.register(cl)
	if !ok {
		ws.Close()
		return
	}
	if onConnect != nil {
		onConnect()
	}

	if err := ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.log.Debugf("Failed to set initial read deadline: %v", err)
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go h.pingLoop(cl)

	defer func() {
		h.unregister(cl)
		h.log.Debugf("WebSocket client %s handler exited", cl.id)
	}()

	// Reads only keep the pong handler running; clients send nothing we use.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *WebSocketHub) register(cl *client) (func(), bool) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, false
	}
	h.clients[cl] = true
	count := len(h.clients)
	h.log.Debugf("WebSocket client %s connected (Total: %d)", cl.id, count)

	// Initial ping plus the cached frame so a new page is not blank until the next tick
	h.writeLocked(cl, Message{Type: MsgPing, Data: time.Now()})
	if h.matrix != nil {
		h.writeLocked(cl, Message{Type: MsgMatrix, Data: h.matrix})
	}
	if h.sprites != nil {
		h.writeLocked(cl, Message{Type: MsgSprites, Data: *h.sprites})
	}
	onConnect := h.onConnect
	h.mu.Unlock()

	h.reportCount(count)
	return onConnect, true
}

func (h *WebSocketHub) unregister(cl *client) {
	h.mu.Lock()
	if !h.clients[cl] {
		h.mu.Unlock()
		return
	}
	h.dropLocked(cl)
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Debugf("WebSocket client %s disconnected (Total: %d)", cl.id, count)
	h.reportCount(count)
}

func (h *WebSocketHub) pingLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
		}

		h.mu.Lock()
		if !h.clients[cl] {
			h.mu.Unlock()
			return
		}
		// Write ping while holding mutex to prevent concurrent writes with broadcast
		err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		h.mu.Unlock()
		if err != nil {
			h.log.Debugf("WebSocket ping error for %s: %v", cl.id, err)
			h.unregister(cl)
			return
		}
	}
}

func (h *WebSocketHub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(msg)
}

func (h *WebSocketHub) broadcastLocked(msg Message) {
	for cl := range h.clients {
		h.writeLocked(cl, msg)
	}
}

func (h *WebSocketHub) writeLocked(cl *client, msg Message) {
	if err := cl.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.log.Debugf("Failed to set write deadline for %s: %v", cl.id, err)
	}
	if err := cl.conn.WriteJSON(msg); err != nil {
		h.log.Debugf("WebSocket write error for %s: %v", cl.id, err)
		h.dropLocked(cl)
	}
}

func (h *WebSocketHub) dropLocked(cl *client) {
	if !h.clients[cl] {
		return
	}
	delete(h.clients, cl)
	close(cl.done)
	if err := cl.conn.Close(); err != nil {
		h.log.Debugf("WebSocket close error: %v", err)
	}
}

func (h *WebSocketHub) reportCount(n int) {
	h.mu.Lock()
	g := h.gauge
	h.mu.Unlock()
	if g != nil {
		g.SetConnectedClients(n)
	}
}
