package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresArchive persists audit events in PostgreSQL.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

func NewPostgresArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresArchive{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			guild_id TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			actor_tag TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			channel_name TEXT NOT NULL,
			detail TEXT NOT NULL,
			at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_at ON audit_events (at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (a *PostgresArchive) Record(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	_, err := a.pool.Exec(ctx,
		`INSERT INTO audit_events (id, kind, guild_id, actor_id, actor_tag, channel_id, channel_name, detail, at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID,
		string(e.Kind),
		e.GuildID,
		e.ActorID,
		e.ActorTag,
		e.ChannelID,
		e.ChannelName,
		e.Detail,
		e.At,
	)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (a *PostgresArchive) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.pool.Query(ctx,
		`SELECT id, kind, guild_id, actor_id, actor_tag, channel_id, channel_name, detail, at
		 FROM audit_events ORDER BY at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.GuildID, &e.ActorID, &e.ActorTag, &e.ChannelID, &e.ChannelName, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}

	return events, nil
}

func (a *PostgresArchive) Close() error {
	a.pool.Close()
	return nil
}
