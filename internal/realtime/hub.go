package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"marineworks/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins (configure in prod)
}

// WSEvent is a realtime event pushed to clients: the full current
// snapshot of a subscribed store path.
type WSEvent struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	Payload any    `json:"payload,omitempty"`
}

const EventSnapshot = "snapshot"

// connection is a single WebSocket client and its live store watches.
// send is never closed: store callbacks may still be in flight when the
// client drops, so writePump exits via done instead.
type connection struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
	subs   map[string]store.UnsubscribeFunc // path -> release
}

// trySend queues a frame unless the connection is gone or the client is
// too slow to keep up.
func (c *connection) trySend(data []byte) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// Client too slow — skip, the next change re-delivers
	}
}

// Hub bridges store subscriptions onto WebSocket connections. Each
// client subscribes to the paths it renders; every store change pushes
// the fresh snapshot. A slow client skips frames instead of blocking
// the writer.
type Hub struct {
	store store.Adapter
	log   *logrus.Logger

	mu    sync.Mutex
	conns map[*connection]struct{}
}

func NewHub(st store.Adapter, log *logrus.Logger) *Hub {
	return &Hub{store: st, log: log, conns: make(map[*connection]struct{})}
}

// ServeHTTP upgrades the request and runs the connection until it drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &connection{
		conn: conn,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
		subs: make(map[string]store.UnsubscribeFunc),
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c) // blocks until disconnect
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	_, open := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if !open {
		return
	}

	c.mu.Lock()
	c.closed = true
	for path, release := range c.subs {
		if release != nil {
			release()
		}
		delete(c.subs, path)
	}
	c.mu.Unlock()
	close(c.done)
}

func (h *Hub) subscribe(c *connection, path string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.subs[path]; ok {
		c.mu.Unlock()
		return
	}
	c.subs[path] = nil // reserve the slot so a concurrent subscribe is a no-op
	c.mu.Unlock()

	// Registered without holding c.mu: the store delivers the initial
	// snapshot synchronously, and the callback takes c.mu itself.
	release := h.store.Subscribe(path, func(snap map[string]any) {
		data, err := json.Marshal(&WSEvent{Type: EventSnapshot, Path: path, Payload: snap})
		if err != nil {
			return
		}
		c.trySend(data)
	})

	c.mu.Lock()
	if _, ok := c.subs[path]; !ok || c.closed {
		c.mu.Unlock()
		release()
		return
	}
	c.subs[path] = release
	c.mu.Unlock()
}

func (h *Hub) unsubscribe(c *connection, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if release, ok := c.subs[path]; ok {
		if release != nil {
			release()
		}
		delete(c.subs, path)
	}
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var event struct {
			Type string `json:"type"`
			Path string `json:"path"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}
		if event.Path == "" {
			continue
		}

		switch event.Type {
		case "subscribe":
			h.subscribe(c, event.Path)
		case "unsubscribe":
			h.unsubscribe(c, event.Path)
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
