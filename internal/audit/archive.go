package audit

import (
	"context"
	"strings"
)

// Archive keeps a queryable history of audit events for the admin API.
// Ticket state itself is never stored here; tickets remain derived from
// live channel metadata.
type Archive interface {
	Record(ctx context.Context, e Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
	Close() error
}

// NewArchive creates a postgres-backed archive when configured, otherwise
// an in-memory ring.
func NewArchive(ctx context.Context, databaseURL string) (Archive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryArchive(), nil
	}
	return NewPostgresArchive(ctx, databaseURL)
}
