package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

const (
	EventCartUpdated = "cart_updated"
	EventPong        = "pong"

	messageSync = "sync"
	messagePing = "ping"

	sendBufferSize = 16
)

// CartSource supplies the current cart when a tab asks to resync.
type CartSource interface {
	GetCart(ctx context.Context, sessionID string) (model.CartSummary, error)
}

// CartEvent is pushed to every tab of a session after a cart change.
type CartEvent struct {
	Type string `json:"type"`
	model.CartSummary
}

// ClientMessage is what a tab may send: "sync" or "ping".
type ClientMessage struct {
	Type string `json:"type"`
}

// Client is one websocket connection of a cart session.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte

	MessageCount  int       // messages received in the current second
	LastResetTime time.Time // start of the current second
	RateMu        sync.Mutex
}

// NewClient creates a client with a buffered send channel.
func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// Hub fans cart events out to every connected tab of a session.
type Hub struct {
	// session ID -> connected tabs
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	source CartSource

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

func NewHub(source CartSource) *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		source:     source,
		done:       make(chan struct{}),
	}
}

// SetCartSource sets where sync requests read the cart from. The cart
// service publishes to the hub, so one of the two is wired after creation.
func (h *Hub) SetCartSource(source CartSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = source
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every client. Register and Unregister stop blocking once Run has returned.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.drainRegistrations()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			total := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"total_tabs":  total,
				"connections": h.ConnectionCount(),
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					// Send buffer full: drop the slow tab
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": message.SessionID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// remove drops client and closes its send channel. Clients that are already
// gone are ignored, so a client may be unregistered more than once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.clients[client.SessionID]
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}

	if len(kept) == 0 {
		delete(h.clients, client.SessionID)
	} else {
		h.clients[client.SessionID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"session_id":     client.SessionID,
		"remaining_tabs": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, list := range h.clients {
		for _, client := range list {
			close(client.Send)
		}
		delete(h.clients, sessionID)
	}
}

// drainRegistrations closes clients still queued for registration when Run
// stops, so their write pumps exit.
func (h *Hub) drainRegistrations() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		default:
			return
		}
	}
}

// NotifyCart queues a cart_updated event for every tab of sessionID. A full
// broadcast queue drops the event; tabs can resync with a "sync" message.
func (h *Hub) NotifyCart(sessionID string, summary model.CartSummary) {
	if err := h.SendToSession(sessionID, CartEvent{Type: EventCartUpdated, CartSummary: summary}); err != nil {
		logger.Error("Failed to publish cart update", err, map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

// SendToSession marshals message and queues it for the session's tabs.
func (h *Hub) SendToSession(sessionID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return nil
}

// Register queues client for Run. After Run has stopped the client is
// closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		close(client.Send)
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister queues client for removal. After Run has stopped it returns
// immediately; every client was already closed.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// IsSessionOnline reports whether any tab of the session is connected.
func (h *Hub) IsSessionOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

// ConnectionCount is the number of connected tabs across all sessions.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, list := range h.clients {
		n += len(list)
	}
	return n
}

// HandleClientMessage answers "sync" with the current cart and "ping" with
// "pong". Tabs sending more than maxMessagesPerSecond are ignored for the
// rest of the second.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}

	switch msg.Type {
	case messagePing:
		h.reply(client, map[string]string{"type": EventPong})

	case messageSync:
		h.mu.RLock()
		source := h.source
		h.mu.RUnlock()
		if source == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		summary, err := source.GetCart(ctx, client.SessionID)
		if err != nil {
			logger.Error("Failed to load cart for sync", err, map[string]interface{}{
				"session_id": client.SessionID,
			})
			return
		}
		h.reply(client, CartEvent{Type: EventCartUpdated, CartSummary: summary})

	default:
		logger.Debug("Ignoring unknown client message", map[string]interface{}{
			"session_id": client.SessionID,
			"type":       msg.Type,
		})
	}
}

// reply sends to one tab only. It holds the read lock so the send channel
// cannot be closed underneath it.
func (h *Hub) reply(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients[client.SessionID] {
		if c != client {
			continue
		}
		select {
		case client.Send <- data:
		default:
			go h.Unregister(client)
		}
	}
}
