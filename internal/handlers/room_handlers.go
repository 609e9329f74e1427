package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"room-chat/internal/services"
	"room-chat/pkg/logger"
)

type RoomHandlers struct {
	roomService *services.RoomService
}

func NewRoomHandlers(roomService *services.RoomService) *RoomHandlers {
	return &RoomHandlers{
		roomService: roomService,
	}
}

func (h *RoomHandlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.ListRooms(r.Context())
	if err != nil {
		logger.Error("List rooms error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	detail, err := h.roomService.GetRoom(r.Context(), r.PathValue("room"))
	if err != nil {
		if errors.Is(err, services.ErrRoomRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("Get room error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *RoomHandlers) GetPresence(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.roomService.RecentPresence(r.Context(), r.PathValue("room"), limit)
	switch {
	case errors.Is(err, services.ErrRoomRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, services.ErrPresenceDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		logger.Error("Get presence error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room":   r.PathValue("room"),
		"events": events,
	})
}
