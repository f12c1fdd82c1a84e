// Package fetchstate tracks one asynchronous request per panel as an
// idle/loading/success/error state machine.
//
// Every Begin issues a ticket. Only the most recent ticket may resolve the
// controller, and only while it is loading, so a response for a superseded
// request is discarded instead of overwriting newer state.
package fetchstate

import (
	"context"
	"sync"
)

type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of a controller.
type State[T any] struct {
	Status  Status
	Data    T
	Message string
	Ticket  uint64
}

// MessageFunc turns a fetch error into the text shown to the user.
type MessageFunc func(error) string

// Controller owns the fetch state of a single panel. The zero value is not
// usable; construct with New.
type Controller[T any] struct {
	mu       sync.Mutex
	state    State[T]
	seq      uint64
	cancel   context.CancelFunc
	message  MessageFunc
	onChange []func(State[T])
	onStale  func(ticket uint64)
}

// New returns an idle controller. message converts errors into display text.
func New[T any](message MessageFunc) *Controller[T] {
	if message == nil {
		message = func(err error) string { return err.Error() }
	}
	return &Controller[T]{message: message}
}

// OnChange registers an observer called after every applied transition.
// Observers run on the goroutine that caused the transition, outside the lock.
func (c *Controller[T]) OnChange(fn func(State[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// OnStale registers a hook called whenever a resolution is discarded.
func (c *Controller[T]) OnStale(fn func(ticket uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStale = fn
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin moves the controller to Loading, clearing any previous payload or
// message, and returns the ticket the eventual Resolve must present.
func (c *Controller[T]) Begin() uint64 {
	return c.begin(nil)
}

func (c *Controller[T]) begin(cancel context.CancelFunc) uint64 {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.seq++
	c.state = State[T]{Status: Loading, Ticket: c.seq}
	snap, observers := c.state, c.observers()
	c.mu.Unlock()

	notify(observers, snap)
	return snap.Ticket
}

// Resolve applies the outcome of the request identified by ticket. It reports
// false, leaving the state untouched, when the ticket has been superseded or
// the controller is not loading.
func (c *Controller[T]) Resolve(ticket uint64, data T, err error) bool {
	if err != nil {
		// Only the current request's error reaches the message func.
		var msg string
		if c.current(ticket) {
			msg = c.message(err)
		}
		return c.settle(ticket, State[T]{Status: Failed, Message: msg, Ticket: ticket})
	}
	return c.settle(ticket, State[T]{Status: Success, Data: data, Ticket: ticket})
}

// Fail moves a loading controller straight to the error state with message,
// for failures detected before any request is made.
func (c *Controller[T]) Fail(ticket uint64, message string) bool {
	return c.settle(ticket, State[T]{Status: Failed, Message: message, Ticket: ticket})
}

func (c *Controller[T]) current(ticket uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ticket == c.seq && c.state.Status == Loading
}

func (c *Controller[T]) settle(ticket uint64, next State[T]) bool {
	c.mu.Lock()
	if ticket != c.seq || c.state.Status != Loading {
		stale := c.onStale
		c.mu.Unlock()
		if stale != nil {
			stale(ticket)
		}
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = next
	snap, observers := c.state, c.observers()
	c.mu.Unlock()

	notify(observers, snap)
	return true
}

// Reset returns the controller to Idle and cancels any in-flight request.
// Pending resolutions become stale.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.state = State[T]{Status: Idle, Ticket: c.seq}
	snap, observers := c.state, c.observers()
	c.mu.Unlock()

	notify(observers, snap)
}

// Fetch begins a new request and runs fn on its own goroutine. Starting a
// fetch cancels the context of the one it supersedes. The returned channel is
// closed once fn has returned and its result was applied or discarded.
func (c *Controller[T]) Fetch(ctx context.Context, fn func(context.Context) (T, error)) <-chan struct{} {
	reqCtx, cancel := context.WithCancel(ctx)
	ticket := c.begin(cancel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		data, err := fn(reqCtx)
		c.Resolve(ticket, data, err)
	}()
	return done
}

// Do is Fetch followed by waiting for it to settle. It returns the state
// after settling, which may belong to a newer request.
func (c *Controller[T]) Do(ctx context.Context, fn func(context.Context) (T, error)) State[T] {
	<-c.Fetch(ctx, fn)
	return c.State()
}

func (c *Controller[T]) observers() []func(State[T]) {
	out := make([]func(State[T]), len(c.onChange))
	copy(out, c.onChange)
	return out
}

func notify[T any](observers []func(State[T]), s State[T]) {
	for _, fn := range observers {
		fn(s)
	}
}
