// internal/job/runner_test.go
//
// Unit-tests for the job runner: per-run tag scope, panic containment, and
// drain-on-close.

package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yanizio/sqltag/internal/sqltag"
)

func TestRunner_JobTagScoped(t *testing.T) {
	r := NewRunner(1, 4, true)

	var mu sync.Mutex
	var seen string
	if err := r.Register("purge", func(ctx context.Context) error {
		v, _ := sqltag.Read(ctx, "job")
		mu.Lock()
		seen = v
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	r.Start(context.Background())
	if err := r.Submit("purge"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if seen != "purge" {
		t.Fatalf("job tag = %q, want purge", seen)
	}
}

func TestRunner_TagJobsDisabled(t *testing.T) {
	r := NewRunner(1, 4, false)

	var tagged bool
	_ = r.Register("quiet", func(ctx context.Context) error {
		_, tagged = sqltag.Read(ctx, "job")
		return nil
	})

	r.Start(context.Background())
	_ = r.Submit("quiet")
	_ = r.Close()

	if tagged {
		t.Fatalf("job tag recorded despite tag_jobs=false")
	}
}

func TestRunner_PanicDoesNotKillWorker(t *testing.T) {
	r := NewRunner(1, 4, true)

	var ran bool
	_ = r.Register("bomb", func(context.Context) error { panic("boom") })
	_ = r.Register("after", func(context.Context) error { ran = true; return nil })

	r.Start(context.Background())
	_ = r.Submit("bomb")
	_ = r.Submit("after")
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if !ran {
		t.Fatalf("worker died after panicking job")
	}
}

func TestRunner_SubmitUnknown(t *testing.T) {
	r := NewRunner(1, 1, true)
	if err := r.Submit("ghost"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("Submit ghost err = %v, want ErrUnknownJob", err)
	}
}

func TestRunner_RegisterDuplicate(t *testing.T) {
	r := NewRunner(1, 1, true)
	if err := r.Register("x", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register("x", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("duplicate Register should fail")
	}
}

func TestRunner_ScopeFreshPerRun(t *testing.T) {
	r := NewRunner(1, 4, true)

	var second string
	_ = r.Register("first", func(ctx context.Context) error {
		sqltag.Update(ctx, map[string]string{"sticky": "yes"})
		return nil
	})
	_ = r.Register("second", func(ctx context.Context) error {
		second, _ = sqltag.Read(ctx, "sticky")
		return nil
	})

	r.Start(context.Background())
	_ = r.Submit("first")
	_ = r.Submit("second")
	_ = r.Close()

	if second != "" {
		t.Fatalf("tag leaked across job runs: %q", second)
	}
}

func TestRunner_CancelStopsWorkers(t *testing.T) {
	r := NewRunner(2, 4, false)
	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() { _ = r.Close(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return after context cancel")
	}
}
