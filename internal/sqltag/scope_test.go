// internal/sqltag/scope_test.go
//
// Unit-tests for scope attach, update, read, and clear semantics.

package sqltag

import (
	"context"
	"testing"
)

func TestScope_UpdateAndRead(t *testing.T) {
	ctx := WithScope(context.Background())

	Update(ctx, map[string]string{"controller": "notes", "custom": "x"})
	if v, ok := Read(ctx, "controller"); !ok || v != "notes" {
		t.Fatalf("Read controller = %q, %v", v, ok)
	}
	// Unknown keys are accepted permissively.
	if v, ok := Read(ctx, "custom"); !ok || v != "x" {
		t.Fatalf("Read custom = %q, %v", v, ok)
	}
	if _, ok := Read(ctx, "absent"); ok {
		t.Fatalf("Read absent key reported presence")
	}
}

func TestScope_NoScopeIsNoOp(t *testing.T) {
	ctx := context.Background()

	// None of these may panic or invent a scope.
	Update(ctx, map[string]string{"k": "v"})
	Clear(ctx)
	if _, ok := Read(ctx, "k"); ok {
		t.Fatalf("Read found a value without any scope")
	}
	if FromContext(ctx) != nil {
		t.Fatalf("FromContext invented a scope")
	}
}

func TestScope_Clear(t *testing.T) {
	ctx := WithScope(context.Background())
	Update(ctx, map[string]string{"job": "purge"})

	Clear(ctx)
	if _, ok := Read(ctx, "job"); ok {
		t.Fatalf("Clear left tags behind")
	}
}

func TestScope_IsolationBetweenUnits(t *testing.T) {
	base := context.Background()
	a := WithScope(base)
	b := WithScope(base)

	Update(a, map[string]string{"controller": "a"})
	if _, ok := Read(b, "controller"); ok {
		t.Fatalf("scope b sees scope a's tags")
	}
}

func TestSkip(t *testing.T) {
	ctx := WithScope(context.Background())
	if skipped(ctx) {
		t.Fatalf("fresh scope reports skipped")
	}
	ctx = Skip(ctx)
	if !skipped(ctx) {
		t.Fatalf("Skip did not mark the scope")
	}

	// Skip without a scope attaches one to carry the marker.
	bare := Skip(context.Background())
	if !skipped(bare) {
		t.Fatalf("Skip on bare context not honored")
	}
}
