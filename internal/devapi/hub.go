package devapi

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
)

const (
	sendBuffer = 16
	writeWait  = 5 * time.Second
)

type client struct {
	id     uuid.UUID
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans spot updates out to every connected push client. Frames from
// clients are read and discarded.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*client
	log     zerolog.Logger
}

func newHub(log zerolog.Logger) *Hub {
	return &Hub{clients: make(map[uuid.UUID]*client), log: log}
}

type spotFrame struct {
	Type string `json:"type"`
	domain.SpotUpdate
}

// Broadcast sends a spot_update frame. Clients whose buffer is full are dropped.
func (h *Hub) Broadcast(u domain.SpotUpdate) {
	frame, err := json.Marshal(spotFrame{Type: domain.EventSpotUpdate, SpotUpdate: u})
	if err != nil {
		h.log.Error().Err(err).Msg("encode spot update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.log.Warn().Str("client_id", id.String()).Msg("push client too slow, dropping")
			h.removeLocked(id)
		}
	}
}

// Clients is the number of connected push clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.removeLocked(id)
	}
}

func (h *Hub) register(conn *websocket.Conn, userID int64) {
	c := &client{id: uuid.New(), userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.log.Info().Str("client_id", c.id.String()).Int64("user_id", userID).Msg("push client connected")

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) unregister(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *Hub) removeLocked(id uuid.UUID) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.log.Debug().Err(err).Str("client_id", c.id.String()).Msg("push write failed")
			h.unregister(c.id)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.log.Info().Str("client_id", c.id.String()).Msg("push client disconnected")
			h.unregister(c.id)
			return
		}
	}
}

// runFeed flips a random spot between AVAILABLE and OCCUPIED on every tick
// until ctx is done.
func runFeed(ctx context.Context, lot *Lot, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids := lot.spotIDs()
			if len(ids) == 0 {
				continue
			}
			id := ids[rand.IntN(len(ids))]
			if !lot.SetStatus(id, domain.SpotOccupied) {
				lot.SetStatus(id, domain.SpotAvailable)
			}
		}
	}
}
