package websocket

import (
	"context"
	"errors"
	"time"

	"room-chat/internal/models"
	"room-chat/internal/registry"
	"room-chat/pkg/logger"
)

var (
	ErrHubClosed           = errors.New("hub closed")
	ErrDuplicateConnection = errors.New("connection already registered")
)

// Sink is the outbound side of one connection as seen by the hub.
type Sink interface {
	// Deliver queues a frame without blocking. It reports false when the
	// connection cannot keep up and should be dropped.
	Deliver(frame []byte) bool
	Close()
}

// PresenceRecorder receives membership transitions. Record must not block.
type PresenceRecorder interface {
	Record(ev models.PresenceEvent)
}

// Hub serializes every connection event through a single goroutine. The
// registry and the connection table are only touched from inside Run, so
// each event observes and mutates a consistent snapshot.
type Hub struct {
	registry *registry.Registry
	conns    map[string]Sink
	presence PresenceRecorder
	now      func() time.Time

	commands chan func()
	done     chan struct{}
}

func NewHub(presence PresenceRecorder) *Hub {
	return &Hub{
		registry: registry.New(),
		conns:    make(map[string]Sink),
		presence: presence,
		now:      time.Now,
		commands: make(chan func()),
		done:     make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdownConnections()
			return nil
		case cmd := <-h.commands:
			cmd()
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// exec runs fn on the hub goroutine and waits for it. A command that has been
// accepted always runs to completion.
func (h *Hub) exec(fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.commands <- cmd:
	case <-h.done:
		return ErrHubClosed
	}
	<-finished
	return nil
}

// Connect makes a transport connection addressable. It has no room yet.
func (h *Hub) Connect(connID string, sink Sink) error {
	var err error
	execErr := h.exec(func() {
		if _, exists := h.conns[connID]; exists {
			err = ErrDuplicateConnection
			return
		}
		h.conns[connID] = sink
		logger.Debug("Connection %s registered. Total connections: %d", connID, len(h.conns))
	})
	if execErr != nil {
		return execErr
	}
	return err
}

// Disconnect is raised by the transport when a link closes. Nothing is acknowledged.
func (h *Hub) Disconnect(connID string) error {
	return h.exec(func() {
		h.guard("disconnect", func() {
			h.disconnect(connID)
		})
	})
}

// Handle processes one client request and returns its acknowledgement. The
// acknowledgement is produced only after every push for the event was queued.
func (h *Hub) Handle(connID string, req models.Request) (models.Ack, error) {
	var ack models.Ack
	err := h.exec(func() {
		ack = h.dispatchRequest(connID, req)
	})
	if err != nil {
		return models.Fail("Server is shutting down"), err
	}
	return ack, nil
}

// Rooms summarizes the rooms that currently have members.
func (h *Hub) Rooms() ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	err := h.exec(func() {
		rooms = h.registry.Rooms()
	})
	return rooms, err
}

// Participants returns the current roster of room.
func (h *Hub) Participants(room string) ([]models.Participant, error) {
	var participants []models.Participant
	err := h.exec(func() {
		participants = h.registry.ParticipantsOf(room)
	})
	return participants, err
}

// ConnectionCount reports live connections, whether or not they joined a room.
func (h *Hub) ConnectionCount() (int, error) {
	var n int
	err := h.exec(func() {
		n = len(h.conns)
	})
	return n, err
}

func (h *Hub) shutdownConnections() {
	logger.Info("Shutting down %d connections...", len(h.conns))
	for id, sink := range h.conns {
		sink.Close()
		delete(h.conns, id)
	}
}

func (h *Hub) record(s registry.Session, kind models.PresenceKind) {
	if h.presence == nil {
		return
	}
	h.presence.Record(models.PresenceEvent{
		ConnID:   s.ConnID,
		Username: s.Username,
		Room:     s.Room,
		Kind:     kind,
		At:       h.now().UTC(),
	})
}
