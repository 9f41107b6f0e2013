package shutdownqueue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddNilTaskIsNoop(t *testing.T) {
	t.Parallel()

	q := New()
	q.Add("nil", nil)

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("expected nil after adding nil task; got %v", err)
	}
}

func TestLIFOOrder(t *testing.T) {
	t.Parallel()

	q := New()

	var (
		orderMu sync.Mutex
		order   []int
	)

	makeTask := func(n int) Task {
		return func(ctx context.Context) error {
			orderMu.Lock()
			order = append(order, n)
			orderMu.Unlock()

			return nil
		}
	}

	for i := 1; i <= 3; i++ {
		q.Add("task", makeTask(i))
	}

	err := q.Shutdown(t.Context())
	if err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	want := []int{3, 2, 1}
	if len(order) != len(want) {
		t.Fatalf("order len mismatch: got %v, want %v", order, want)
	}

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, order, want)
		}
	}
}

func TestPanicRecoveryNamesTaskAndContinues(t *testing.T) {
	t.Parallel()

	q := New()

	var ranAfterPanic atomic.Bool

	q.Add("before", func(ctx context.Context) error { return nil })
	q.Add("store", func(ctx context.Context) error { panic("boom") })
	q.Add("after", func(ctx context.Context) error {
		ranAfterPanic.Store(true)
		return nil
	})

	shErr := q.Shutdown(t.Context())
	if shErr == nil {
		t.Fatalf("expected aggregated error with panic; got nil")
	}

	if !strings.Contains(shErr.Error(), `panic in shutdown task "store": boom`) {
		t.Fatalf("expected panic message in error; got: %q", shErr.Error())
	}

	if !ranAfterPanic.Load() {
		t.Fatalf("expected tasks registered after the panicking one to run")
	}
}

func TestAggregatedErrorsAndEarlyCancel(t *testing.T) {
	t.Parallel()

	q := New()
	errA := errors.New("taskA")

	var ranB atomic.Bool

	gateReady := make(chan struct{})
	gate := func(ctx context.Context) error {
		close(gateReady)
		<-ctx.Done()

		return nil
	}

	q.Add("a", func(ctx context.Context) error { return errA })
	q.Add("b", func(ctx context.Context) error {
		ranB.Store(true)
		return nil
	})
	q.Add("gate", gate) // LIFO: gate, b, a

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)

	go func() {
		errCh <- q.Shutdown(ctx)
	}()

	<-gateReady
	cancel()

	shErr := <-errCh
	if !errors.Is(shErr, context.Canceled) {
		t.Fatalf("expected errors.Is(err, context.Canceled); got: %v", shErr)
	}

	if ranB.Load() {
		t.Fatalf("expected task b not to run after cancel")
	}

	if errors.Is(shErr, errA) {
		t.Fatalf("did not expect joined error to include taskA")
	}
}

func TestIdempotentAndRunsOnce(t *testing.T) {
	t.Parallel()

	q := New()

	var count atomic.Int32

	q.Add("count", func(ctx context.Context) error {
		count.Add(1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown #1 error: %v", err)
	}

	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown #2 expected nil; got %v", err)
	}

	if got := count.Load(); got != 1 {
		t.Fatalf("expected count=1; got %d", got)
	}
}

func TestAddAfterShutdownStartedIsDropped(t *testing.T) {
	t.Parallel()

	q := New()

	started := make(chan struct{})
	unblock := make(chan struct{})

	q.Add("noop", func(ctx context.Context) error { return nil })
	q.Add("blocker", func(ctx context.Context) error {
		close(started)
		<-unblock

		return nil
	})

	done := make(chan struct{})

	go func() {
		_ = q.Shutdown(context.Background())
		close(done)
	}()

	<-started

	var ran atomic.Bool
	q.Add("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	close(unblock)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Shutdown did not finish")
	}

	if ran.Load() {
		t.Fatalf("task added after shutdown should not run")
	}
}

func TestTaskErrorsAreJoinedAndNamed(t *testing.T) {
	t.Parallel()

	q := New()
	err1 := errors.New("alpha")
	err2 := errors.New("beta")

	q.Add("first", func(ctx context.Context) error { return err1 })
	q.Add("second", func(ctx context.Context) error { return err2 })

	shErr := q.Shutdown(t.Context())
	if !errors.Is(shErr, err1) || !errors.Is(shErr, err2) {
		t.Fatalf("expected joined error to contain both; got: %v", shErr)
	}

	s := shErr.Error()
	if !strings.Contains(s, `"first"`) || !strings.Contains(s, `"second"`) {
		t.Fatalf("expected task names in error; got: %q", s)
	}
}

//nolint:paralleltest
func TestDefaultQueue(t *testing.T) {
	prev := Default
	Default = New()
	t.Cleanup(func() { Default = prev })

	var ran atomic.Bool
	Add("default", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	if err := Shutdown(t.Context()); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}

	if !ran.Load() {
		t.Fatalf("expected default queue task to run")
	}
}
