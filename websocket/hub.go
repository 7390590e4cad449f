package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/anjiri1684/payment_reconciler/models"
)

const EventPaymentUpdated = "payment.updated"

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Client struct {
	PaymentID uint
	Conn      Conn
}

type Event struct {
	Type    string         `json:"type"`
	Payment models.Payment `json:"payment"`
}

// Hub fans payment updates out to the clients watching each payment.
// Only Run touches the client map; Subscribers reads it under the lock.
type Hub struct {
	clients   map[uint]map[Conn]bool
	clientsMu sync.RWMutex

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan models.Payment
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[Conn]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan models.Payment, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.Register:
			log.Printf("Client subscribed to payment %d", client.PaymentID)
			h.clientsMu.Lock()
			if h.clients[client.PaymentID] == nil {
				h.clients[client.PaymentID] = make(map[Conn]bool)
			}
			h.clients[client.PaymentID][client.Conn] = true
			h.clientsMu.Unlock()
		case client := <-h.Unregister:
			log.Printf("Client unsubscribed from payment %d", client.PaymentID)
			h.remove(client.PaymentID, client.Conn)
		case payment := <-h.broadcast:
			h.send(payment)
		}
	}
}

// Subscribe adds client to the watchers of its payment. It reports false
// once the hub has stopped.
func (h *Hub) Subscribe(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unsubscribe removes client. It returns immediately once the hub has stopped.
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// PaymentUpdated queues an update without blocking the caller. Updates are
// dropped when the queue is full.
func (h *Hub) PaymentUpdated(p models.Payment, _ bool) {
	select {
	case h.broadcast <- p:
	default:
		log.Printf("Websocket broadcast queue full, dropping update for payment %d", p.ID)
	}
}

func (h *Hub) Subscribers(paymentID uint) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[paymentID])
}

func (h *Hub) send(payment models.Payment) {
	h.clientsMu.RLock()
	conns := make([]Conn, 0, len(h.clients[payment.ID]))
	for conn := range h.clients[payment.ID] {
		conns = append(conns, conn)
	}
	h.clientsMu.RUnlock()

	event := Event{Type: EventPaymentUpdated, Payment: payment}
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Error sending update for payment %d: %v", payment.ID, err)
			conn.Close()
			h.remove(payment.ID, conn)
		}
	}
}

func (h *Hub) remove(paymentID uint, conn Conn) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if conns, ok := h.clients[paymentID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, paymentID)
		}
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, id)
	}
}
