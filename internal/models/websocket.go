package models

import "encoding/json"

type EventType string

// Client -> server request events.
const (
	EventJoinRoom            EventType = "join_room"
	EventSendMessage         EventType = "send_message"
	EventGetRoomParticipants EventType = "get_room_participants"
	EventLeaveRoom           EventType = "leave_room"
)

// Server -> client frames.
const (
	EventAck              EventType = "ack"
	EventReceiveMessage   EventType = "receive_message"
	EventUserJoined       EventType = "user_joined"
	EventUserLeft         EventType = "user_left"
	EventRoomParticipants EventType = "room_participants"
)

// Request is one inbound frame. ID correlates the acknowledgement; zero means
// the client did not ask for one.
type Request struct {
	Event EventType       `json:"event"`
	ID    int64           `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope is one outbound frame, either an ack or a push event.
type Envelope struct {
	Event EventType   `json:"event"`
	ID    int64       `json:"id,omitempty"`
	Data  interface{} `json:"data"`
}

type JoinRoomRequest struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type SendMessageRequest struct {
	Room     string `json:"room"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

type GetRoomParticipantsRequest struct {
	Room string `json:"room"`
}

// Ack is the acknowledgement payload. Fields not relevant to an event are omitted;
// a nil Participants is dropped while an empty roster still encodes as [].
type Ack struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	Room         string        `json:"room,omitempty"`
	Participants []Participant `json:"participants,omitzero"`
}

func Fail(message string) Ack {
	return Ack{Success: false, Message: message}
}

type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ChatMessage struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Notice is the payload of user_joined and user_left.
type Notice struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}
