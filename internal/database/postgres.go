package database

import (
	"context"
	"fmt"

	"room-chat/internal/models"
	"room-chat/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS presence_events (
	id         BIGSERIAL PRIMARY KEY,
	conn_id    TEXT        NOT NULL,
	username   TEXT        NOT NULL,
	room       TEXT        NOT NULL,
	kind       TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS presence_events_room_created_at_idx
	ON presence_events (room, created_at DESC);`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (db *PostgresDB) RecordPresence(ctx context.Context, ev *models.PresenceEvent) error {
	query := `
		INSERT INTO presence_events (conn_id, username, room, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := db.pool.QueryRow(ctx, query, ev.ConnID, ev.Username, ev.Room, string(ev.Kind), ev.At).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("failed to record presence: %w", err)
	}
	return nil
}

func (db *PostgresDB) RecentPresence(ctx context.Context, room string, limit int) ([]*models.PresenceEvent, error) {
	query := `
		SELECT id, conn_id, username, room, kind, created_at
		FROM presence_events
		WHERE room = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.PresenceEvent, 0)
	for rows.Next() {
		ev := &models.PresenceEvent{}
		var kind string
		if err := rows.Scan(&ev.ID, &ev.ConnID, &ev.Username, &ev.Room, &kind, &ev.At); err != nil {
			return nil, err
		}
		ev.Kind = models.PresenceKind(kind)
		events = append(events, ev)
	}

	return events, rows.Err()
}
