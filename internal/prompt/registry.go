package prompt

import (
	"context"
	"sync"
	"time"
)

// task is one in-flight fetch. The value and err fields are written by the
// fetch goroutine before done is closed and read by waiters only after
// done is observed closed.
type task struct {
	key     string
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	value string
	err   error
}

// finish publishes the outcome and wakes any waiters.
func (t *task) finish(value string, err error) {
	t.value = value
	t.err = err
	close(t.done)
}

// Registry tracks in-flight fetch tasks, at most one per key. Removal from
// the registry is the single authoritative completion signal: whichever of
// the task itself and the stale-task reaper removes the entry first owns
// the outcome, and a task that lost ownership must not write the cache.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]*task
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: map[string]*task{}}
}

// begin registers a new task for key. Returns false without registering
// when a task for key is already in flight (single-flight).
func (r *Registry) begin(key string, now time.Time, cancel context.CancelFunc) (*task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[key]; exists {
		return nil, false
	}

	t := &task{
		key:     key,
		started: now,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	r.tasks[key] = t
	return t, true
}

// lookup returns the in-flight task for key, if any.
func (r *Registry) lookup(key string) (*task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[key]
	return t, ok
}

// remove deregisters t. Returns true only if t was still the registered
// task for its key, i.e. the caller owns the outcome.
func (r *Registry) remove(t *task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.tasks[t.key]; ok && current == t {
		delete(r.tasks, t.key)
		return true
	}
	return false
}

// reap cancels and evicts every task older than maxAge, returning the
// affected keys. Evicted tasks lose ownership and will not write the
// cache even if their subprocess eventually produces output.
func (r *Registry) reap(maxAge time.Duration, now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reaped []string
	for key, t := range r.tasks {
		if now.Sub(t.started) > maxAge {
			t.cancel()
			delete(r.tasks, key)
			reaped = append(reaped, key)
		}
	}
	return reaped
}

// size returns the number of in-flight tasks.
func (r *Registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
