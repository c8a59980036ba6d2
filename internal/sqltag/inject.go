// internal/sqltag/inject.go
//
// Comment injection into statement text.
//
// Inject is deliberately dumb string surgery: it never parses SQL.  The
// only guarantees it gives are idempotence (a comment already present is
// not added twice) and that empty comments leave the statement byte-for-byte
// unchanged.
package sqltag

import (
	"context"
	"strings"

	"github.com/yanizio/sqltag/internal/metrics"
)

// Inject places comment and inline into sql, appending by default or
// prepending when prepend is true.  Comments that are empty or already a
// substring of sql are skipped.
func Inject(sql, comment, inline string, prepend bool) string {
	parts := make([]string, 0, 2)
	for _, c := range []string{comment, inline} {
		if c == "" || strings.Contains(sql, c) {
			continue
		}
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return sql
	}
	joined := strings.Join(parts, " ")
	if prepend {
		return joined + " " + sql
	}
	return sql + " " + joined
}

// Annotate is the full per-query path the driver wrapper calls: compose the
// component comment, compose the inline comment, and inject both.  A scope
// marked Skip passes the statement through untouched.
func (c *Composer) Annotate(ctx context.Context, sql string) string {
	if skipped(ctx) {
		return sql
	}
	out := Inject(sql, c.Comment(ctx), InlineComment(ctx), c.prepend)
	if out != sql {
		metrics.AnnotatedQueries.Inc()
	}
	return out
}
