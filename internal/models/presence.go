package models

import "time"

type PresenceKind string

const (
	PresenceJoined       PresenceKind = "joined"
	PresenceLeft         PresenceKind = "left"
	PresenceDisconnected PresenceKind = "disconnected"
)

// PresenceEvent records one membership transition of a connection.
type PresenceEvent struct {
	ID       int64        `json:"id,omitempty"`
	ConnID   string       `json:"conn_id"`
	Username string       `json:"username"`
	Room     string       `json:"room"`
	Kind     PresenceKind `json:"kind"`
	At       time.Time    `json:"at"`
}

type RoomSummary struct {
	Room             string `json:"room"`
	ParticipantCount int    `json:"participant_count"`
}

type RoomDetail struct {
	Room         string        `json:"room"`
	Participants []Participant `json:"participants"`
	Count        int           `json:"count"`
}

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
