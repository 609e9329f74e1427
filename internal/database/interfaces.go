package database

import (
	"context"

	"room-chat/internal/models"
)

type PresenceRepository interface {
	RecordPresence(ctx context.Context, ev *models.PresenceEvent) error
	RecentPresence(ctx context.Context, room string, limit int) ([]*models.PresenceEvent, error)
}

type Database interface {
	PresenceRepository
	EnsureSchema(ctx context.Context) error
	Close() error
}
