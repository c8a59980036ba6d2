// internal/sqltag/callsite.go
//
// The "line" component: first application frame above the tagging machinery.
//
// Context
// -------
// Walking the stack on every query is the most expensive thing this package
// does, so resolved frames are memoized in an LRU keyed by program counter.
// The frame filter decides which functions count as plumbing; the default
// skips this module, database/sql, sqlx, net/http, and the runtime.  Hosts
// with their own wrapper layers can install a stricter filter at boot.
package sqltag

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/yanizio/sqltag/internal/cache"
)

// FrameFilter reports whether fn (a fully qualified function name) belongs
// to plumbing that should not appear as a query's call site.
type FrameFilter func(fn string) bool

var (
	filterMu    sync.RWMutex
	frameFilter FrameFilter = defaultFrameFilter

	siteMu    sync.Mutex
	siteCache = cache.New(1024) // pc → "file:line"
)

// SetFrameFilter replaces the default plumbing filter.  Call during boot,
// before queries start flowing.
func SetFrameFilter(f FrameFilter) {
	if f == nil {
		f = defaultFrameFilter
	}
	filterMu.Lock()
	frameFilter = f
	filterMu.Unlock()
}

func defaultFrameFilter(fn string) bool {
	for _, p := range []string{
		"github.com/yanizio/sqltag/internal/sqltag",
		"database/sql",
		"github.com/jmoiron/sqlx",
		"net/http",
		"runtime.",
	} {
		if strings.Contains(fn, p) {
			return true
		}
	}
	return false
}

// callSite renders the first non-plumbing frame as "file.go:123".  Absent
// when every frame is plumbing (e.g., a driver-internal ping).
func callSite(context.Context) (string, bool) {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return "", false
	}

	filterMu.RLock()
	filter := frameFilter
	filterMu.RUnlock()

	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		if fr.Function != "" && !filter(fr.Function) {
			return resolveSite(fr), true
		}
		if !more {
			return "", false
		}
	}
}

// resolveSite formats one frame, memoizing by PC.
func resolveSite(fr runtime.Frame) string {
	siteMu.Lock()
	defer siteMu.Unlock()
	if v, ok := siteCache.Get(fr.PC); ok {
		return v.(string)
	}
	site := filepath.Base(fr.File) + ":" + strconv.Itoa(fr.Line)
	siteCache.Add(fr.PC, site)
	return site
}
