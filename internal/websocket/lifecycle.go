package websocket

import (
	"encoding/json"
	"fmt"

	"room-chat/internal/models"
	"room-chat/internal/registry"
	"room-chat/pkg/logger"
)

const systemUsername = "System"

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var failureMessages = map[models.EventType]string{
	models.EventJoinRoom:            "Failed to join room",
	models.EventSendMessage:         "Failed to send message",
	models.EventGetRoomParticipants: "Failed to get room participants",
	models.EventLeaveRoom:           "Failed to leave room",
}

// dispatchRequest routes a request to its handler behind a recover boundary.
func (h *Hub) dispatchRequest(connID string, req models.Request) (ack models.Ack) {
	failure, known := failureMessages[req.Event]
	if !known {
		logger.Debug("Unknown event %q from %s", req.Event, connID)
		return models.Fail(fmt.Sprintf("Unknown event %s", req.Event))
	}

	ack = models.Fail(failure)
	h.guard(string(req.Event), func() {
		switch req.Event {
		case models.EventJoinRoom:
			var p models.JoinRoomRequest
			if !decodeData(req.Data, &p) {
				ack = models.Fail("Invalid payload")
				return
			}
			ack = h.joinRoom(connID, p)
		case models.EventSendMessage:
			var p models.SendMessageRequest
			if !decodeData(req.Data, &p) {
				ack = models.Fail("Invalid payload")
				return
			}
			ack = h.sendMessage(connID, p)
		case models.EventGetRoomParticipants:
			var p models.GetRoomParticipantsRequest
			if !decodeData(req.Data, &p) {
				ack = models.Fail("Invalid payload")
				return
			}
			ack = h.getRoomParticipants(p)
		case models.EventLeaveRoom:
			ack = h.leaveRoom(connID)
		}
	})
	return ack
}

// guard keeps a panicking handler from taking the hub goroutine down.
func (h *Hub) guard(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Recovered from panic in %s: %v", op, r)
		}
	}()
	fn()
}

// decodeData accepts an absent payload as the zero value.
func decodeData(data json.RawMessage, v interface{}) bool {
	if len(data) == 0 || string(data) == "null" {
		return true
	}
	return json.Unmarshal(data, v) == nil
}

func (h *Hub) timestamp() string {
	return h.now().UTC().Format(timestampLayout)
}

func (h *Hub) joinRoom(connID string, req models.JoinRoomRequest) models.Ack {
	if req.Username == "" || req.Room == "" {
		return models.Fail("Username and room are required")
	}

	previous, hadSession := h.registry.Lookup(connID)

	// The same session moves to the new room, so the old room's roster
	// below no longer contains it.
	session := h.registry.Register(connID, req.Username, req.Room)

	if hadSession && previous.Room != req.Room {
		h.record(previous, models.PresenceLeft)
		h.announceDeparture(previous, fmt.Sprintf("%s has left the room", previous.Username))
	}

	participants := h.registry.ParticipantsOf(req.Room)
	if !hadSession || previous.Room != req.Room {
		h.record(*session, models.PresenceJoined)
		h.toRoomExceptSelf(req.Room, connID, models.EventUserJoined, models.Notice{
			Username: req.Username,
			Message:  fmt.Sprintf("%s has joined the room", req.Username),
		})
	}
	h.toRoomInclusive(req.Room, models.EventRoomParticipants, participants)
	h.toOne(connID, models.EventReceiveMessage, models.ChatMessage{
		Username:  systemUsername,
		Message:   fmt.Sprintf("Welcome to room %s!", req.Room),
		Timestamp: h.timestamp(),
	})

	logger.Info("%s joined room %s", req.Username, req.Room)
	return models.Ack{
		Success:      true,
		Message:      fmt.Sprintf("Successfully joined room %s", req.Room),
		Room:         req.Room,
		Participants: participants,
	}
}

func (h *Hub) sendMessage(connID string, req models.SendMessageRequest) models.Ack {
	if req.Room == "" || req.Message == "" || req.Username == "" {
		return models.Fail("Room, message, and username are required")
	}

	session, ok := h.registry.Lookup(connID)
	if !ok || session.Room != req.Room {
		logger.Debug("Rejected message from %s to room %s: not a member", connID, req.Room)
		return models.Fail("You are not in this room")
	}

	h.toRoomInclusive(req.Room, models.EventReceiveMessage, models.ChatMessage{
		Username:  req.Username,
		Message:   req.Message,
		Timestamp: h.timestamp(),
	})

	logger.Debug("Message from %s in room %s", req.Username, req.Room)
	return models.Ack{Success: true, Message: "Message sent successfully"}
}

func (h *Hub) getRoomParticipants(req models.GetRoomParticipantsRequest) models.Ack {
	return models.Ack{Success: true, Participants: h.registry.ParticipantsOf(req.Room)}
}

func (h *Hub) leaveRoom(connID string) models.Ack {
	session, ok := h.removeSession(connID, models.PresenceLeft, "%s has left the room")
	if !ok {
		return models.Fail("You are not in any room")
	}

	logger.Info("%s left room %s", session.Username, session.Room)
	return models.Ack{Success: true, Message: fmt.Sprintf("Left room %s", session.Room)}
}

func (h *Hub) disconnect(connID string) {
	delete(h.conns, connID)

	if session, ok := h.removeSession(connID, models.PresenceDisconnected, "%s has disconnected"); ok {
		logger.Info("%s disconnected from room %s", session.Username, session.Room)
	}
	logger.Debug("Connection %s unregistered. Total connections: %d", connID, len(h.conns))
}

// removeSession is the cleanup shared by leave and disconnect. notice is a
// format string receiving the username.
func (h *Hub) removeSession(connID string, kind models.PresenceKind, notice string) (registry.Session, bool) {
	session, err := h.registry.Deregister(connID)
	if err != nil {
		return registry.Session{}, false
	}

	h.record(session, kind)
	h.announceDeparture(session, fmt.Sprintf(notice, session.Username))
	return session, true
}

// announceDeparture tells the remaining members of s.Room that s is gone and
// sends them the refreshed roster. s must already be out of the room.
func (h *Hub) announceDeparture(s registry.Session, message string) {
	h.toRoomInclusive(s.Room, models.EventUserLeft, models.Notice{
		Username: s.Username,
		Message:  message,
	})
	h.toRoomInclusive(s.Room, models.EventRoomParticipants, h.registry.ParticipantsOf(s.Room))
}
