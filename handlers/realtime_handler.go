package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/anjiri1684/payment_reconciler/services"
	"github.com/anjiri1684/payment_reconciler/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// RealtimeHandler streams status changes of one payment to a websocket client.
type RealtimeHandler struct {
	hub       *websocket.Hub
	store     services.PaymentStore
	jwtSecret string
}

func NewRealtimeHandler(hub *websocket.Hub, store services.PaymentStore, jwtSecret string) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, store: store, jwtSecret: jwtSecret}
}

func (h *RealtimeHandler) ServeWs(c *websocketcontrib.Conn) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid payment ID"})
		c.Close()
		return
	}

	var msg authMessage
	if err := c.ReadJSON(&msg); err != nil || msg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}
	if _, err := parseToken(h.jwtSecret, msg.Token); err != nil {
		log.Printf("WebSocket auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	payment, err := h.store.FindByID(context.Background(), uint(id))
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Payment record not found"})
		c.Close()
		return
	}
	// Current state first, so the client does not miss a transition that
	// landed before it subscribed.
	if err := c.WriteJSON(websocket.Event{Type: websocket.EventPaymentUpdated, Payment: *payment}); err != nil {
		c.Close()
		return
	}

	client := &websocket.Client{PaymentID: payment.ID, Conn: c}
	if !h.hub.Subscribe(client) {
		c.Close()
		return
	}
	defer func() {
		h.hub.Unsubscribe(client)
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for payment %d", payment.ID)
			} else {
				log.Printf("WebSocket read error for payment %d: %v", payment.ID, err)
			}
			return
		}
	}
}

func parseToken(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
