// Package ws implements the WebSocket hub that fans mutation events out
// to every connected client.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is the wire format of a live-update message.
type Event struct {
	MessageType string `json:"message_type"`
	Data        any    `json:"data,omitempty"`
}

// Subscription is one live subscriber's inbound event stream. Events
// arrive on C in publish order.
type Subscription struct {
	ID string
	C  <-chan []byte

	ch chan []byte
}

// Hub manages WebSocket client connections and broadcasts events.
// Construct one per process and inject it; it holds no global state.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*Subscription
	bufSize int
	logger  *slog.Logger

	upgrader websocket.Upgrader
}

// NewHub creates a Hub whose subscribers buffer up to bufSize pending
// events each. A non-positive bufSize falls back to 64.
func NewHub(bufSize int, logger *slog.Logger) *Hub {
	if bufSize <= 0 {
		bufSize = 64
	}
	return &Hub{
		subs:    make(map[string]*Subscription),
		bufSize: bufSize,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Subscribe registers a new subscriber. It receives every event
// published after this call; there is no replay.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan []byte, h.bufSize)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call
// more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.ch)
}

// Publish sends an event to all current subscribers. A subscriber whose
// buffer is full misses the event; others are unaffected and the
// publisher never blocks.
func (h *Hub) Publish(messageType string, data any) {
	payload, err := json.Marshal(Event{MessageType: messageType, Data: data})
	if err != nil {
		h.logger.Error("hub publish marshal", slog.Any("err", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.ch <- payload:
		default:
			// Drop event if client is slow — don't block
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeWS upgrades the request to a WebSocket connection and streams
// events to it until either end closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)
	h.logger.Debug("ws client connected", slog.String("client", sub.ID))

	ack, _ := json.Marshal(Event{
		MessageType: "connected",
		Data:        map[string]string{"status": "connected"},
	})
	if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
		return
	}

	// Drain client frames so close frames are processed; we never act on
	// inbound messages.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Debug("ws client disconnected", slog.String("client", sub.ID))
			return
		case <-r.Context().Done():
			return
		case payload, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Debug("ws write failed", slog.String("client", sub.ID), slog.Any("err", err))
				return
			}
		}
	}
}
