// Package registry holds the authoritative connection -> session mapping and
// derives room rosters from it on demand.
package registry

import (
	"errors"
	"sort"

	"room-chat/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Session is a connection's current chat identity.
type Session struct {
	ConnID   string
	Username string
	Room     string
}

// Registry maps a connection id to at most one Session. It is not safe for
// concurrent use; the hub goroutine is its only owner.
type Registry struct {
	sessions map[string]*Session
}

func New() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register inserts the session for connID or moves the existing one to room.
// An existing session object is updated in place, never recreated.
func (r *Registry) Register(connID, username, room string) *Session {
	if s, ok := r.sessions[connID]; ok {
		s.Username = username
		s.Room = room
		return s
	}

	s := &Session{ConnID: connID, Username: username, Room: room}
	r.sessions[connID] = s
	return s
}

// Deregister removes and returns the session for connID.
func (r *Registry) Deregister(connID string) (Session, error) {
	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, ErrNotFound
	}
	delete(r.sessions, connID)
	return *s, nil
}

// Lookup returns a copy of the session for connID.
func (r *Registry) Lookup(connID string) (Session, bool) {
	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// ParticipantsOf returns the roster of room. The result is never nil.
// Entries are sorted by connection id so repeated calls are comparable.
func (r *Registry) ParticipantsOf(room string) []models.Participant {
	participants := make([]models.Participant, 0)
	for _, s := range r.sessions {
		if s.Room == room {
			participants = append(participants, models.Participant{ID: s.ConnID, Username: s.Username})
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ID < participants[j].ID
	})
	return participants
}

// Members returns the connection ids in room, excluding exclude if non-empty.
func (r *Registry) Members(room, exclude string) []string {
	var ids []string
	for id, s := range r.sessions {
		if s.Room == room && id != exclude {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Rooms summarizes every room that currently has at least one session.
func (r *Registry) Rooms() []models.RoomSummary {
	counts := make(map[string]int)
	for _, s := range r.sessions {
		counts[s.Room]++
	}

	summaries := make([]models.RoomSummary, 0, len(counts))
	for room, n := range counts {
		summaries = append(summaries, models.RoomSummary{Room: room, ParticipantCount: n})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Room < summaries[j].Room
	})
	return summaries
}

func (r *Registry) Len() int {
	return len(r.sessions)
}
