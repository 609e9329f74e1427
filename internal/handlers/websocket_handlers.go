package handlers

import (
	"net/http"

	"room-chat/internal/config"
	ws "room-chat/internal/websocket"
	"room-chat/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	hub      *ws.Hub
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(hub *ws.Hub, cfg config.WebSocketConfig, origins *OriginPolicy) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.CheckOrigin,
		},
	}
}

func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade connection to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, uuid.NewString(), h.cfg)
	if err := h.hub.Connect(client.ID(), client); err != nil {
		logger.Error("Error registering connection %s: %v", client.ID(), err)
		conn.Close()
		return
	}
	logger.Info("User connected: %s", client.ID())

	// Start client pumps
	go client.WritePump()
	go client.ReadPump()
}
