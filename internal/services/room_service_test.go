package services

import (
	"context"
	"errors"
	"testing"

	"room-chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRooms struct {
	rooms        []models.RoomSummary
	participants map[string][]models.Participant
	err          error
}

func (s *stubRooms) Rooms() ([]models.RoomSummary, error) {
	return s.rooms, s.err
}

func (s *stubRooms) Participants(room string) ([]models.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.participants[room]; ok {
		return p, nil
	}
	return []models.Participant{}, nil
}

type stubPresence struct {
	gotLimit int
}

func (s *stubPresence) RecordPresence(ctx context.Context, ev *models.PresenceEvent) error {
	return nil
}

func (s *stubPresence) RecentPresence(ctx context.Context, room string, limit int) ([]*models.PresenceEvent, error) {
	s.gotLimit = limit
	return []*models.PresenceEvent{{Room: room, Kind: models.PresenceJoined}}, nil
}

func TestRoomService_ListRooms(t *testing.T) {
	rooms := &stubRooms{rooms: []models.RoomSummary{{Room: "lobby", ParticipantCount: 2}}}
	s := NewRoomService(rooms, nil)

	got, err := s.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rooms.rooms, got)

	rooms.err = errors.New("hub closed")
	_, err = s.ListRooms(context.Background())
	assert.ErrorIs(t, err, rooms.err)
}

func TestRoomService_GetRoom(t *testing.T) {
	rooms := &stubRooms{participants: map[string][]models.Participant{
		"lobby": {{ID: "c1", Username: "alice"}, {ID: "c2", Username: "bob"}},
	}}
	s := NewRoomService(rooms, nil)

	tests := []struct {
		name      string
		room      string
		wantCount int
		wantErr   error
	}{
		{name: "populated room", room: "lobby", wantCount: 2},
		{name: "empty room", room: "nowhere", wantCount: 0},
		{name: "missing name", room: "", wantErr: ErrRoomRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := s.GetRoom(context.Background(), tt.room)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.room, detail.Room)
			assert.Equal(t, tt.wantCount, detail.Count)
			assert.Len(t, detail.Participants, tt.wantCount)
		})
	}
}

func TestRoomService_RecentPresence(t *testing.T) {
	presence := &stubPresence{}
	s := NewRoomService(&stubRooms{}, presence)

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: defaultPresenceLimit},
		{limit: -3, want: defaultPresenceLimit},
		{limit: 5, want: 5},
		{limit: 1000, want: maxPresenceLimit},
	}
	for _, tt := range tests {
		events, err := s.RecentPresence(context.Background(), "lobby", tt.limit)
		require.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, tt.want, presence.gotLimit)
	}

	_, err := s.RecentPresence(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrRoomRequired)

	_, err = NewRoomService(&stubRooms{}, nil).RecentPresence(context.Background(), "lobby", 5)
	assert.ErrorIs(t, err, ErrPresenceDisabled)
}
