// internal/sqltag/builtin.go
//
// Built-in comment components.
//
// Context
// -------
// Scope-backed components (application, controller, action, job, route)
// read keys that the HTTP middleware and the job runner merge in.  Static
// components (pid, db_host, database, socket) read process facts and the
// connection descriptor that internal/database hands over after it parses
// the DSN.  The "line" component lives in callsite.go.
//
// Notes
// -----
// • application falls back to the package-level default set during boot, so
//   queries outside any request scope still carry the service name.
// • Renderers must never error a query; anything unavailable renders as
//   absent (see render in registry.go).
package sqltag

import (
	"context"
	"os"
	"strconv"
	"sync/atomic"
)

// ConnInfo describes the database endpoint queries are dispatched to.  The
// database package fills it from the parsed DSN at pool-open time.
type ConnInfo struct {
	Host     string // TCP host, empty for socket connections
	Database string // schema name
	Socket   string // unix socket path, empty for TCP
}

var (
	connInfo   atomic.Pointer[ConnInfo]
	defaultApp atomic.Pointer[string]
)

// SetConnInfo installs the connection descriptor the db_host, database, and
// socket components render.  Call once after opening the pool.
func SetConnInfo(ci ConnInfo) { connInfo.Store(&ci) }

// SetApplication installs the fallback application name used when the scope
// has no explicit "application" tag.
func SetApplication(name string) { defaultApp.Store(&name) }

// scopeComponent builds a renderer that mirrors one scope key.
func scopeComponent(key string) Renderer {
	return func(ctx context.Context) (string, bool) {
		return Read(ctx, key)
	}
}

func init() {
	mustRegister("application", func(ctx context.Context) (string, bool) {
		if v, ok := Read(ctx, "application"); ok {
			return v, true
		}
		if p := defaultApp.Load(); p != nil && *p != "" {
			return *p, true
		}
		return "", false
	})

	mustRegister("pid", func(context.Context) (string, bool) {
		return strconv.Itoa(os.Getpid()), true
	})

	mustRegister("db_host", func(context.Context) (string, bool) {
		if ci := connInfo.Load(); ci != nil && ci.Host != "" {
			return ci.Host, true
		}
		return "", false
	})
	mustRegister("database", func(context.Context) (string, bool) {
		if ci := connInfo.Load(); ci != nil && ci.Database != "" {
			return ci.Database, true
		}
		return "", false
	})
	mustRegister("socket", func(context.Context) (string, bool) {
		if ci := connInfo.Load(); ci != nil && ci.Socket != "" {
			return ci.Socket, true
		}
		return "", false
	})

	mustRegister("controller", scopeComponent("controller"))
	mustRegister("action", scopeComponent("action"))
	mustRegister("job", scopeComponent("job"))
	mustRegister("route", scopeComponent("route"))

	mustRegister("line", callSite)
}
