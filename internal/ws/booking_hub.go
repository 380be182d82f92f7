package ws

import (
	"encoding/json"
	"sync"

	"servicehub/internal/models"
)

// BookingRoom holds the live connections watching one booking's thread.
type BookingRoom struct {
	BookingID uint
	clients   map[*Client]struct{}
	mu        sync.RWMutex
}

func NewBookingRoom(bookingID uint) *BookingRoom {
	return &BookingRoom{BookingID: bookingID, clients: make(map[*Client]struct{})}
}

func (r *BookingRoom) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.room = r
	r.clients[c] = struct{}{}
}

func (r *BookingRoom) Leave(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *BookingRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *BookingRoom) Broadcast(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()
	for _, c := range clients {
		c.deliver(data)
	}
}

// BookingHub holds all booking rooms by booking ID.
type BookingHub struct {
	mu    sync.Mutex
	rooms map[uint]*BookingRoom
}

func NewBookingHub() *BookingHub {
	return &BookingHub{rooms: make(map[uint]*BookingRoom)}
}

// Join adds c to the booking's room, creating the room if needed. Lookup and join happen under
// h.mu so a concurrent Leave cannot drop the room in between.
func (h *BookingHub) Join(bookingID uint, c *Client) *BookingRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[bookingID]
	if !ok {
		r = NewBookingRoom(bookingID)
		h.rooms[bookingID] = r
	}
	r.Join(c)
	return r
}

// ClientCount reports how many connections watch the booking.
func (h *BookingHub) ClientCount(bookingID uint) int {
	h.mu.Lock()
	r := h.rooms[bookingID]
	h.mu.Unlock()
	if r == nil {
		return 0
	}
	return r.ClientCount()
}

// Leave closes c, removes it from its room and drops the room once empty.
// Lock order is h.mu, then c.mu, then the room's lock.
func (h *BookingHub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := c.room
	c.Close()
	if r == nil {
		return
	}
	if r.ClientCount() == 0 && h.rooms[r.BookingID] == r {
		delete(h.rooms, r.BookingID)
	}
}

// PublishBookingMessage sends a stored message to everyone watching the booking.
func (h *BookingHub) PublishBookingMessage(bookingID uint, msg *models.BookingMessage) {
	h.mu.Lock()
	r := h.rooms[bookingID]
	h.mu.Unlock()
	if r == nil {
		return
	}
	r.Broadcast(map[string]interface{}{"type": "message", "message": msg})
}
