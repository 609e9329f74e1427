package handlers

import (
	"net/http"

	"room-chat/pkg/logger"
)

// Router wires the HTTP surface. auth and rooms may be nil, in which case the
// operator API is not mounted.
type Router struct {
	WebSocket *WebSocketHandlers
	Auth      *AuthHandlers
	Rooms     *RoomHandlers
	Health    http.HandlerFunc
	Origins   *OriginPolicy
}

func (rt Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("GET /ws", rt.WebSocket.HandleWebSocket)
	mux.HandleFunc("GET /healthz", rt.Health)

	// Operator routes
	if rt.Auth != nil && rt.Rooms != nil {
		mux.HandleFunc("POST /admin/token", rt.Auth.IssueToken)
		mux.HandleFunc("GET /admin/rooms", rt.Auth.RequireOperator(rt.Rooms.ListRooms))
		mux.HandleFunc("GET /admin/rooms/{room}", rt.Auth.RequireOperator(rt.Rooms.GetRoom))
		mux.HandleFunc("GET /admin/rooms/{room}/presence", rt.Auth.RequireOperator(rt.Rooms.GetPresence))
	}

	return rt.Origins.CORS(mux)
}

func (rt Router) PrintEndpoints(port string) {
	logger.Info("WebSocket endpoint: ws://localhost%s/ws", port)
	logger.Info("API endpoints:")
	logger.Info("   GET  /healthz")
	if rt.Auth == nil || rt.Rooms == nil {
		logger.Info("   (operator API disabled)")
		return
	}
	logger.Info("   POST /admin/token")
	logger.Info("   GET  /admin/rooms")
	logger.Info("   GET  /admin/rooms/{room}")
	logger.Info("   GET  /admin/rooms/{room}/presence")
}
