// internal/middleware/tags.go
//
// Request-lifecycle hooks for the query tagger.
//
// Context
// -------
// QueryTags sits at the top of the chi chain.  For every request it
// attaches a fresh sqltag scope to the request context and records the
// request-level tags (route, action, and the application name), so every
// statement the handler runs carries them.  The scope dies with the
// request; nothing leaks across requests.
//
// Controller names are per-route, not per-request, so they are recorded by
// a second, route-scoped middleware:
//
//	r.With(middleware.Controller("invoices")).Get("/invoices/{id}", h)
//
// Notes
// -----
// • When action tagging is disabled only "route" and "application" are
//   recorded; the controller and action components then render as absent.
// • Oxford commas, two spaces after periods.
package middleware

import (
	"net/http"
	"strings"

	"github.com/yanizio/sqltag/internal/sqltag"
)

// QueryTags attaches a per-request tag scope and seeds request-level tags.
func QueryTags(application string, tagActions bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := sqltag.WithScope(r.Context())

			tags := map[string]string{"route": r.URL.Path}
			if application != "" {
				tags["application"] = application
			}
			if tagActions {
				tags["action"] = strings.ToLower(r.Method)
			}
			sqltag.Update(ctx, tags)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Controller records the owning controller for one route.  A no-op when the
// request carries no scope (tagging disabled).
func Controller(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sqltag.Update(r.Context(), map[string]string{"controller": name})
			next.ServeHTTP(w, r)
		})
	}
}
