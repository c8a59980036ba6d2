// internal/middleware/tags_test.go
//
// Unit-tests for the QueryTags and Controller middleware.
//
// Each test wires a chi router the way cmd/web does, fires an httptest
// request, and asserts against the scope the handler observes.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sqltag/internal/sqltag"
)

func TestQueryTags_SeedsRequestScope(t *testing.T) {
	r := chi.NewRouter()
	r.Use(QueryTags("billing", true))

	var controller, action, route, app string
	r.With(Controller("invoices")).Get("/invoices/{id}", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		controller, _ = sqltag.Read(ctx, "controller")
		action, _ = sqltag.Read(ctx, "action")
		route, _ = sqltag.Read(ctx, "route")
		app, _ = sqltag.Read(ctx, "application")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/invoices/42", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if controller != "invoices" || action != "get" || route != "/invoices/42" || app != "billing" {
		t.Fatalf("tags = controller %q, action %q, route %q, app %q",
			controller, action, route, app)
	}
}

func TestQueryTags_ActionsDisabled(t *testing.T) {
	r := chi.NewRouter()
	r.Use(QueryTags("billing", false))

	var actionSet bool
	r.Get("/x", func(w http.ResponseWriter, req *http.Request) {
		_, actionSet = sqltag.Read(req.Context(), "action")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if actionSet {
		t.Fatalf("action tag recorded despite tag_actions=false")
	}
}

func TestQueryTags_FreshScopePerRequest(t *testing.T) {
	r := chi.NewRouter()
	r.Use(QueryTags("", false))

	var leaked bool
	r.Get("/first", func(w http.ResponseWriter, req *http.Request) {
		sqltag.Update(req.Context(), map[string]string{"sticky": "yes"})
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/second", func(w http.ResponseWriter, req *http.Request) {
		_, leaked = sqltag.Read(req.Context(), "sticky")
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/first", "/second"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rr.Code)
		}
	}
	if leaked {
		t.Fatalf("tag leaked across requests")
	}
}

func TestController_NoScopeIsNoOp(t *testing.T) {
	// Controller without QueryTags upstream must not panic.
	h := Controller("orphans")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
