package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Synchronized record families tracked in sync_state.
const (
	FamilyProducts = "products"
	FamilySales    = "sales"
)

// LastSyncedAt returns the last successful sync timestamp for a record
// family. ok is false if the family has never synced.
func (s *Store) LastSyncedAt(ctx context.Context, family string) (t time.Time, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT last_synced_at FROM sync_state WHERE family = ?`, family,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last synced at %q: %w", family, err)
	}

	t, err = time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last synced at %q: parse %q: %w", family, raw, err)
	}
	return t, true, nil
}

// SetLastSyncedAt records a successful sync for a record family.
func (s *Store) SetLastSyncedAt(ctx context.Context, family string, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (family, last_synced_at)
		VALUES (?, ?)
		ON CONFLICT(family) DO UPDATE SET last_synced_at = excluded.last_synced_at
	`, family, t.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set last synced at %q: %w", family, err)
	}
	return nil
}
