// Package presence persists room membership transitions without holding up
// the hub: records are queued in memory and written by a background worker.
package presence

import (
	"context"
	"time"

	"room-chat/internal/database"
	"room-chat/internal/models"
	"room-chat/pkg/logger"
)

const writeTimeout = 5 * time.Second

type Journal struct {
	repo   database.PresenceRepository
	events chan models.PresenceEvent
}

func NewJournal(repo database.PresenceRepository, buffer int) *Journal {
	return &Journal{
		repo:   repo,
		events: make(chan models.PresenceEvent, buffer),
	}
}

// Record queues ev. When the queue is full the record is dropped.
func (j *Journal) Record(ev models.PresenceEvent) {
	select {
	case j.events <- ev:
	default:
		logger.Warn("Presence journal full; dropping %s event for %s in room %s", ev.Kind, ev.ConnID, ev.Room)
	}
}

// Run writes queued records until ctx is cancelled, then flushes what is left.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			j.flush()
			return nil
		case ev := <-j.events:
			j.write(ctx, ev)
		}
	}
}

func (j *Journal) flush() {
	for {
		select {
		case ev := <-j.events:
			j.write(context.Background(), ev)
		default:
			return
		}
	}
}

func (j *Journal) write(ctx context.Context, ev models.PresenceEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := j.repo.RecordPresence(ctx, &ev); err != nil {
		logger.Error("Error recording presence for %s: %v", ev.ConnID, err)
	}
}

// Discard is used when no database is configured.
type Discard struct{}

func (Discard) Record(models.PresenceEvent) {}
