package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
	"github.com/labstack/echo/v4"
)

// EventType classifies a row change pushed over the change feed.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one change-feed message. The field names are part of the
// wire schema the clients decode.
type Event struct {
	Type EventType   `json:"eventType"`
	New  *model.Task `json:"new,omitempty"`
	Old  *model.Task `json:"old,omitempty"`
}

type envelope struct {
	userID string
	event  Event
}

// Hub fans row-change events out to the websocket sessions of the
// owning user. Every write handler publishes here after committing, so
// a user's other devices converge without polling.
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]string // conn -> user id

	broadcast chan envelope

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates a hub and starts its broadcast loop.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:   make(map[*websocket.Conn]string),
		broadcast: make(chan envelope, 100),
		ctx:       ctx,
		cancel:    cancel,
	}
	h.wg.Add(1)
	go h.broadcastLoop()
	return h
}

// Close disconnects all sessions and stops the broadcast loop.
func (h *Hub) Close() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
}

// Publish queues an event for the given user's sessions. Never blocks a
// request handler: when the queue is full the event is dropped and the
// clients reconverge on their next full fetch.
func (h *Hub) Publish(userID string, ev Event) {
	select {
	case h.broadcast <- envelope{userID: userID, event: ev}:
	case <-h.ctx.Done():
	default:
		logger.Warn("Change feed queue full, dropping event",
			logger.F("user", userID), logger.F("type", ev.Type))
	}
}

// ClientCount returns the number of connected sessions.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case env := <-h.broadcast:
			data, err := json.Marshal(env.event)
			if err != nil {
				logger.Error("Failed to marshal event", logger.F("error", err))
				continue
			}

			h.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn, uid := range h.clients {
				if uid == env.userID {
					conns = append(conns, conn)
				}
			}
			h.clientsMu.RUnlock()

			// Send outside the lock so a slow session cannot stall the
			// whole feed.
			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					h.remove(conn)
				}
			}
		}
	}
}

func (h *Hub) add(conn *websocket.Conn, userID string) int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	h.clients[conn] = userID
	return len(h.clients)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	n := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	logger.Debug("Change feed session closed", logger.F("sessions", n))
}

// handleRealtime upgrades the request to a websocket session on the
// change feed. Auth happened in the middleware; the session only ever
// receives events, client messages are ignored.
func (s *Server) handleRealtime(c echo.Context) error {
	userID := c.Get("user_id").(string)

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Warn("Websocket upgrade failed", logger.F("error", err))
		return nil
	}

	n := s.hub.add(conn, userID)
	logger.Info("Change feed session opened",
		logger.F("user", userID), logger.F("sessions", n))

	go s.hub.readLoop(conn)
	return nil
}

// readLoop drains inbound frames so pings are answered, and tears the
// session down when the peer goes away.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}
