// Package refresh coordinates token refreshes across concurrently failing
// requests.
//
// A Coordinator lets exactly one refresh call be outstanding at a time. Requests
// that hit an authorization failure while a refresh is in flight are parked
// in a queue and released together with that refresh's outcome. Requests that
// were sent before a refresh settled, but whose failure arrives after it,
// adopt the settled outcome instead of starting another refresh.
package refresh

import (
	"context"
	"sync"
	"time"
)

// Func performs the refresh network call.
type Func func(ctx context.Context) error

// Coordinator is the refresh-in-progress gate plus its pending queue.
// The zero value is ready to use.
type Coordinator struct {
	mu         sync.Mutex
	refreshing bool
	queue      []chan error
	generation uint64
	lastErr    error
	timeout    time.Duration
}

// DefaultTimeout bounds a refresh when the caller has no configured value.
const DefaultTimeout = 10 * time.Second

// New returns a Coordinator whose refresh calls are bounded by timeout. A
// zero timeout leaves the call unbounded.
func New(timeout time.Duration) *Coordinator {
	return &Coordinator{timeout: timeout}
}

// Generation returns the number of refreshes settled so far. Sample it before
// sending a request and hand it to Await if the request is rejected.
func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// InFlight reports whether the gate is held.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

// Pending returns the number of parked requests.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Await resolves an authorization failure observed by a request sent at
// generation seen. It returns nil when the request should be replayed and
// the refresh error otherwise.
//
// The gate check and the decision to lead, queue or adopt happen under one
// lock acquisition, before any waiting.
func (c *Coordinator) Await(ctx context.Context, seen uint64, fn Func) error {
	return c.await(ctx, seen, fn, nil)
}

// AwaitNotify is Await with a callback invoked (outside the lock) when the
// caller is parked behind an in-flight refresh.
func (c *Coordinator) AwaitNotify(ctx context.Context, seen uint64, fn Func, onQueued func()) error {
	return c.await(ctx, seen, fn, onQueued)
}

func (c *Coordinator) await(ctx context.Context, seen uint64, fn Func, onQueued func()) error {
	c.mu.Lock()
	if c.generation > seen {
		err := c.lastErr
		c.mu.Unlock()
		return err
	}
	if c.refreshing {
		ch := make(chan error, 1)
		c.queue = append(c.queue, ch)
		c.mu.Unlock()
		if onQueued != nil {
			onQueued()
		}
		return c.wait(ctx, ch)
	}
	c.refreshing = true
	c.mu.Unlock()

	err := c.run(ctx, fn)
	c.settle(err)
	return err
}

func (c *Coordinator) run(ctx context.Context, fn Func) (err error) {
	// Waiters depend on this call, so the leader's cancellation must not
	// abort it. The configured timeout still bounds it.
	runCtx := context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, c.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			c.settle(&PanicError{Value: r})
			panic(r)
		}
	}()
	return fn(runCtx)
}

// settle records the outcome, drains the queue and releases the gate.
func (c *Coordinator) settle(err error) {
	c.mu.Lock()
	if !c.refreshing {
		c.mu.Unlock()
		return
	}
	queue := c.queue
	c.queue = nil
	c.generation++
	c.lastErr = err
	c.refreshing = false
	c.mu.Unlock()

	for _, ch := range queue {
		ch <- err
	}
}

func (c *Coordinator) wait(ctx context.Context, ch chan error) error {
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		c.mu.Lock()
		for i, q := range c.queue {
			if q == ch {
				c.queue = append(c.queue[:i], c.queue[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		return ctx.Err()
	}
}

// PanicError is delivered to parked requests when the refresh call panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "refresh panicked"
}
