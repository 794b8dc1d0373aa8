package websocket

import "github.com/rs/zerolog/log"

// targeted is a message addressed to one user's connections.
type targeted struct {
	username string
	message  []byte
}

// Hub maintains the set of active clients and fans task events out to the
// connections belonging to each username.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages addressed to a single username.
	send chan targeted

	// A map of usernames to the set of their connected clients.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		send:          make(chan targeted, 16),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client)
			log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case t := <-h.send:
			for client := range h.subscriptions[t.username] {
				select {
				case client.Send <- t.message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		}
	}
}

// BroadcastTo sends a message to all clients connected as the given
// username. Safe to call from any goroutine.
func (h *Hub) BroadcastTo(username string, message []byte) {
	h.send <- targeted{username: username, message: message}
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.Username] == nil {
		h.subscriptions[client.Username] = make(map[*Client]bool)
	}
	h.subscriptions[client.Username][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.Username]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.Username)
		}
	}
}
