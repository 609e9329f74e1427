package services

import (
	"context"
	"errors"
	"fmt"

	"room-chat/internal/database"
	"room-chat/internal/models"
)

const (
	defaultPresenceLimit = 20
	maxPresenceLimit     = 100
)

var (
	ErrRoomRequired     = errors.New("room name is required")
	ErrPresenceDisabled = errors.New("presence journal is not configured")
)

// RoomReader is the read side of the hub.
type RoomReader interface {
	Rooms() ([]models.RoomSummary, error)
	Participants(room string) ([]models.Participant, error)
}

// RoomService answers operator questions about live rooms. It never changes
// membership.
type RoomService struct {
	rooms    RoomReader
	presence database.PresenceRepository
}

// NewRoomService builds the service. presence may be nil when no database is configured.
func NewRoomService(rooms RoomReader, presence database.PresenceRepository) *RoomService {
	return &RoomService{rooms: rooms, presence: presence}
}

func (s *RoomService) ListRooms(ctx context.Context) ([]models.RoomSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rooms, err := s.rooms.Rooms()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) GetRoom(ctx context.Context, room string) (*models.RoomDetail, error) {
	if room == "" {
		return nil, ErrRoomRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	participants, err := s.rooms.Participants(room)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	return &models.RoomDetail{
		Room:         room,
		Participants: participants,
		Count:        len(participants),
	}, nil
}

// RecentPresence returns the newest membership transitions of room. limit is
// clamped to [1, 100]; zero or less selects the default.
func (s *RoomService) RecentPresence(ctx context.Context, room string, limit int) ([]*models.PresenceEvent, error) {
	if room == "" {
		return nil, ErrRoomRequired
	}
	if s.presence == nil {
		return nil, ErrPresenceDisabled
	}

	if limit <= 0 {
		limit = defaultPresenceLimit
	}
	if limit > maxPresenceLimit {
		limit = maxPresenceLimit
	}

	return s.presence.RecentPresence(ctx, room, limit)
}
