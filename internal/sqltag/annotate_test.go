// internal/sqltag/annotate_test.go
//
// Unit-tests for the inline annotation stack: nesting order, guaranteed
// pop on panic, and delimiter sanitization.

package sqltag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWithAnnotation_Nesting(t *testing.T) {
	ctx := WithScope(context.Background())

	var inner, outer string
	err := WithAnnotation(ctx, "x", func(ctx context.Context) error {
		outer = InlineComment(ctx)
		return WithAnnotation(ctx, "y", func(ctx context.Context) error {
			inner = InlineComment(ctx)
			return nil
		})
	})
	if err != nil {
		t.Fatalf("WithAnnotation: %v", err)
	}

	if outer != "/*x*/" {
		t.Fatalf("outer inline = %q, want /*x*/", outer)
	}
	// Nested annotations concatenate in push order, no comma joining.
	if inner != "/*xy*/" {
		t.Fatalf("inner inline = %q, want /*xy*/", inner)
	}
	if got := InlineComment(ctx); got != "" {
		t.Fatalf("stack not empty after blocks: %q", got)
	}
}

func TestWithAnnotation_PopsOnError(t *testing.T) {
	ctx := WithScope(context.Background())

	wantErr := errors.New("inner failed")
	err := WithAnnotation(ctx, "a", func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error not propagated: %v", err)
	}
	if n := len(Annotations(ctx)); n != 0 {
		t.Fatalf("stack depth = %d after error, want 0", n)
	}
}

func TestWithAnnotation_PopsOnPanic(t *testing.T) {
	ctx := WithScope(context.Background())

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the panic to propagate")
			}
		}()
		_ = WithAnnotation(ctx, "outer", func(ctx context.Context) error {
			_ = WithAnnotation(ctx, "inner", func(context.Context) error {
				panic("boom")
			})
			return nil
		})
	}()

	if n := len(Annotations(ctx)); n != 0 {
		t.Fatalf("stack depth = %d after panic, want 0", n)
	}
}

func TestWithAnnotation_AttachesScopeWhenMissing(t *testing.T) {
	var seen string
	err := WithAnnotation(context.Background(), "adhoc", func(ctx context.Context) error {
		seen = InlineComment(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("WithAnnotation: %v", err)
	}
	if seen != "/*adhoc*/" {
		t.Fatalf("inline = %q, want /*adhoc*/", seen)
	}
}

func TestInlineComment_Sanitized(t *testing.T) {
	ctx := WithScope(context.Background())
	_ = WithAnnotation(ctx, "bad */ worse /*", func(ctx context.Context) error {
		got := InlineComment(ctx)
		body := got[2 : len(got)-2]
		for _, d := range []string{"/*", "*/"} {
			if strings.Contains(body, d) {
				t.Fatalf("inline body %q leaks %q", body, d)
			}
		}
		return nil
	})
}
