package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/session"
	ws "github.com/tmaziere/taskboard/internal/websocket"
)

// WebSocketHandler upgrades dashboard connections for the live task-event
// feed.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Serve handles the WebSocket connection request. The route sits behind
// RequireUser, so the connection is subscribed to the authenticated
// username's task events.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	username := session.Username(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, username)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		client.ReadPump()
		h.hub.Unregister <- client
	}()
}
