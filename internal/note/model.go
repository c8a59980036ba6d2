// internal/note/model.go
//
// Demo domain for the tagged query path.  Notes are soft-deleted rows; the
// purge job exercises the background-job side of the tagger while the HTTP
// handlers exercise the request side.
package note

import "time"

// Record mirrors one row in the persistent `note` table.  Soft deletion is
// captured by a nullable timestamp; DeletedAt being non-NULL hides the row
// from reads until the purge job removes it for good.
type Record struct {
	ID        uint64     `db:"id"`
	Slug      string     `db:"slug"`
	Title     string     `db:"title"`
	Body      string     `db:"body"`
	DeletedAt *time.Time `db:"deleted_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}
