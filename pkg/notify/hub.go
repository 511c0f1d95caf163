package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slidecast/slidecast/pkg/logger"
)

// Hub broadcasts notifications to attached websocket clients, so a UI can
// render them as toasts. Slow or gone clients are dropped, never waited on.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan event
	up      websocket.Upgrader
	log     *logger.Logger
}

type event struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan event),
		up:      websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		log:     log,
	}
}

func (h *Hub) Success(msg string) { h.broadcast(event{Kind: "success", Message: msg, Time: time.Now()}) }
func (h *Hub) Warning(msg string) { h.broadcast(event{Kind: "warning", Message: msg, Time: time.Now()}) }
func (h *Hub) Error(msg string)   { h.broadcast(event{Kind: "error", Message: msg, Time: time.Now()}) }

// Handler upgrades an HTTP request into an event feed connection.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("events feed upgrade failed")
		return
	}
	out := make(chan event, 16)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()
	h.log.Debug().Msgf("events feed attached [%v]", conn.RemoteAddr())

	go func() {
		defer h.drop(conn)
		for ev := range out {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()
	go func() {
		// clients send nothing; reading surfaces disconnects
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *Hub) broadcast(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, out := range h.clients {
		select {
		case out <- ev:
		default:
			delete(h.clients, conn)
			close(out)
			_ = conn.Close()
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if out, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(out)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Close detaches every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, out := range h.clients {
		delete(h.clients, conn)
		close(out)
		_ = conn.Close()
	}
}
