package sandbox

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Reader event types
const (
	EventReaderUpdated      = "reader_updated"
	EventCheckoutCreated    = "checkout_created"
	EventCheckoutTerminated = "checkout_terminated"
	EventConnectionChanged  = "connection_changed"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // sandbox only
	},
}

// Event is a message pushed to reader subscribers
type Event struct {
	Type     string          `json:"type"`
	ReaderID string          `json:"reader_id"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	SentAt   time.Time       `json:"sent_at"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans reader events out to websocket subscribers
type Hub struct {
	lg *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates an empty hub
func NewHub(lg *slog.Logger) *Hub {
	return &Hub{
		lg:   lg,
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Publish sends an event to every subscriber of the reader.
// Slow subscribers miss events rather than block the publisher.
func (h *Hub) Publish(readerID, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.lg.Error("failed to encode event payload", slog.String("type", eventType), slog.Any("error", err))
		return
	}
	msg, _ := json.Marshal(Event{
		Type:     eventType,
		ReaderID: readerID,
		Payload:  raw,
		SentAt:   time.Now().UTC(),
	})

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[readerID] {
		select {
		case s.send <- msg:
		default:
			h.lg.Warn("dropping event for slow subscriber", slog.String("reader_id", readerID))
		}
	}
}

// Subscribers returns the number of open subscriptions for a reader
func (h *Hub) Subscribers(readerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[readerID])
}

// Serve upgrades the request and streams the reader's events until the
// client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, readerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.lg.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	s := &subscriber{conn: conn, send: make(chan []byte, 64)}
	h.add(readerID, s)

	go s.writePump()
	go h.readPump(readerID, s)
}

func (h *Hub) add(readerID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[readerID] == nil {
		h.subs[readerID] = make(map[*subscriber]struct{})
	}
	h.subs[readerID][s] = struct{}{}
}

func (h *Hub) remove(readerID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[readerID][s]; !ok {
		return
	}
	delete(h.subs[readerID], s)
	if len(h.subs[readerID]) == 0 {
		delete(h.subs, readerID)
	}
	close(s.send)
}

// readPump only watches for the client closing; subscribers send nothing
// but control frames.
func (h *Hub) readPump(readerID string, s *subscriber) {
	defer func() {
		h.remove(readerID, s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.lg.Warn("websocket error", slog.Any("error", err))
			}
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
