package note

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Recent returns the newest live notes, capped at limit.  The caller's
// context carries the tag scope, so these statements arrive at the server
// commented.
func Recent(ctx context.Context, db *sqlx.DB, limit int) ([]Record, error) {
	const q = `
        SELECT id, slug, title, body, deleted_at, created_at, updated_at
        FROM   note
        WHERE  deleted_at IS NULL
        ORDER  BY created_at DESC
        LIMIT  ?`
	var rows []Record
	if err := db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// BySlug fetches a single live note.
func BySlug(ctx context.Context, db *sqlx.DB, slug string) (*Record, error) {
	const q = `
        SELECT id, slug, title, body, deleted_at, created_at, updated_at
        FROM   note
        WHERE  slug = ?
          AND  deleted_at IS NULL
        LIMIT  1`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, slug); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Purge hard-deletes notes soft-deleted before the cutoff and reports how
// many rows went away.  Run from the background job runner.
func Purge(ctx context.Context, db *sqlx.DB, olderThan time.Duration) (int64, error) {
	const q = `
        DELETE FROM note
        WHERE  deleted_at IS NOT NULL
          AND  deleted_at < ?`
	res, err := db.ExecContext(ctx, q, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
