// Package shutdownqueue runs named cleanup tasks in LIFO order.
//
// A process-wide Default queue backs the package-level Add and Shutdown, so
// components can register their cleanup where they are constructed:
//
//	shutdownqueue.Add("http server", srv.Shutdown)
//	...
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	err := shutdownqueue.Shutdown(ctx)
//
// Tasks run once, in reverse order of registration. Panics are recovered.
// Shutdown is idempotent and returns an aggregated error via errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type entry struct {
	name string
	task Task
}

// Queue collects tasks until Shutdown drains it.
type Queue struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// Default is the queue used by the package-level functions.
var Default = New()

func New() *Queue {
	return &Queue{entries: make([]entry, 0, 8)}
}

// Add registers t under name on the Default queue.
func Add(name string, t Task) { Default.Add(name, t) }

// Shutdown drains the Default queue.
func Shutdown(ctx context.Context) error { return Default.Shutdown(ctx) }

// Add registers a task to be run on Shutdown.
// If t is nil or shutdown has already started, Add does nothing.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		log.WithField("task", name).Warn("shutdown already started, task dropped")
		return
	}

	q.entries = append(q.entries, entry{name: name, task: t})
}

// Shutdown drains all registered tasks in LIFO order. Calls after the first
// one are no-ops.
//
// If ctx is canceled mid-drain, Shutdown stops early and returns the context
// error joined with any task errors collected so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed && len(q.entries) == 0 {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	entries := q.entries
	q.entries = nil

	q.mu.Unlock()

	var errs []error

	for i := len(entries) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		err := run(ctx, entries[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func run(ctx context.Context, e entry) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", e.name, r)
		}
	}()

	log.WithField("task", e.name).Info("running shutdown task")

	err = e.task(ctx)
	if err != nil {
		return fmt.Errorf("shutdown task %q: %w", e.name, err)
	}

	return nil
}
