package websocket

import (
	"encoding/json"

	"room-chat/internal/models"
	"room-chat/pkg/logger"
)

// The delivery primitives below run on the hub goroutine. Frames for one
// recipient are queued in call order, and a frame addressed to a connection
// that is already gone is dropped without error.

func (h *Hub) toOne(connID string, event models.EventType, payload interface{}) {
	frame, ok := encodeFrame(event, payload)
	if !ok {
		return
	}
	h.deliver(connID, frame)
}

func (h *Hub) toRoomExceptSelf(room, excludeConnID string, event models.EventType, payload interface{}) {
	frame, ok := encodeFrame(event, payload)
	if !ok {
		return
	}
	for _, id := range h.registry.Members(room, excludeConnID) {
		h.deliver(id, frame)
	}
}

func (h *Hub) toRoomInclusive(room string, event models.EventType, payload interface{}) {
	h.toRoomExceptSelf(room, "", event, payload)
}

func (h *Hub) deliver(connID string, frame []byte) {
	sink, ok := h.conns[connID]
	if !ok {
		return
	}
	if sink.Deliver(frame) {
		return
	}

	// The session stays registered until the transport reports the close,
	// which then runs the regular disconnect cleanup.
	logger.Warn("Send buffer full for connection %s; closing it", connID)
	delete(h.conns, connID)
	sink.Close()
}

func encodeFrame(event models.EventType, payload interface{}) ([]byte, bool) {
	frame, err := json.Marshal(models.Envelope{Event: event, Data: payload})
	if err != nil {
		logger.Error("Error marshaling %s event: %v", event, err)
		return nil, false
	}
	return frame, true
}

// EncodeAck frames an acknowledgement for request id.
func EncodeAck(id int64, ack models.Ack) ([]byte, error) {
	return json.Marshal(models.Envelope{Event: models.EventAck, ID: id, Data: ack})
}
