// internal/sqltag/composer.go
//
// Comment composition and memoization.
//
// Context
// -------
// The Composer turns the configured component list into one SQL comment:
//
//	/*application:billing,controller:invoices,action:get,pid:4242*/
//
// Components render in list order, absent components are dropped, and every
// value passes through one canonical sanitizer so a hostile tag value can
// never close the comment early or open a second one.  When caching is on
// the rendered string is memoized on the Scope and survives until the next
// Update.
//
// Notes
// -----
// • The cache key is implicit: any Update wipes it.  Content addressing
//   would buy nothing since a scope rarely renders more than a handful of
//   distinct comments.
// • Oxford commas, two spaces after periods.
package sqltag

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanizio/sqltag/internal/metrics"
)

// Options configures a Composer.  Components must all be registered; an
// unknown name is a startup error, never a per-query one.
type Options struct {
	Components []string // render order, significant, duplicates allowed
	Cache      bool     // memoize per scope until the next Update
	Prepend    bool     // put comments before the statement text
}

// Composer renders and injects query tags.  Safe for concurrent use; all
// mutable state lives on the per-unit Scope.
type Composer struct {
	components []string
	cache      bool
	prepend    bool
}

// NewComposer validates opts.Components against the registry and returns a
// ready Composer.
func NewComposer(opts Options) (*Composer, error) {
	for _, name := range opts.Components {
		if lookup(name) == nil {
			return nil, fmt.Errorf("sqltag: unknown component %q", name)
		}
	}
	return &Composer{
		components: append([]string(nil), opts.Components...),
		cache:      opts.Cache,
		prepend:    opts.Prepend,
	}, nil
}

// Comment renders the component comment for ctx.  Returns "" when every
// component is absent.
func (c *Composer) Comment(ctx context.Context) string {
	s := FromContext(ctx)
	if c.cache && s != nil && s.cacheValid {
		metrics.CommentCacheHits.Inc()
		return s.cached
	}

	out := c.renderAll(ctx)
	metrics.CommentsRendered.Inc()
	if c.cache && s != nil {
		metrics.CommentCacheMisses.Inc()
		s.cached = out
		s.cacheValid = true
	}
	return out
}

// renderAll does the uncached composition pass.
func (c *Composer) renderAll(ctx context.Context) string {
	var parts []string
	for _, name := range c.components {
		val, ok := render(name, ctx)
		if !ok || val == "" {
			continue
		}
		parts = append(parts, name+":"+Escape(val))
	}
	if len(parts) == 0 {
		return ""
	}
	return "/*" + strings.Join(parts, ",") + "*/"
}

// CachedComment exposes the memoized value for tests and diagnostics.  The
// second return is false when nothing is memoized for ctx.
func (c *Composer) CachedComment(ctx context.Context) (string, bool) {
	s := FromContext(ctx)
	if s == nil || !s.cacheValid {
		return "", false
	}
	return s.cached, true
}

// Escape is the one canonical sanitizer for everything that ends up inside
// a comment: component values and inline annotations alike.  It collapses
// every "/*" and "*/" sequence, including run-together forms like "*/*",
// until none remain, so the output can never terminate the surrounding
// comment or start a new one.
func Escape(s string) string {
	for strings.Contains(s, "/*") || strings.Contains(s, "*/") {
		s = strings.ReplaceAll(s, "/*", "/")
		s = strings.ReplaceAll(s, "*/", "/")
	}
	return s
}
