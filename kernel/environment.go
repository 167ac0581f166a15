package kernel

import (
	"math"

	"github.com/zond/simkernel/internal/errs"
)

// Environment owns the virtual clock, the scheduling heap, and the
// currently-active Process. It is the kernel's single executor: all
// kernel-invoked callbacks, including Process resumption, run
// synchronously on whatever goroutine calls Step/Run. See package doc
// for the single-threaded-cooperative contract this depends on.
//
// Grounded on storage/queue/queue.go's single-loop dispatcher shape
// (Push/Start/signal), with real-time time.Timer waiting replaced by
// virtual-clock heap popping — real-time execution is a Non-goal here.
type Environment struct {
	now      float64
	queue    *priorityQueue
	seq      uint64
	active   *Process
	observer any
}

// Option configures an Environment at construction.
type Option func(*Environment)

// WithInitialTime sets the clock's starting value (default 0).
func WithInitialTime(t float64) Option {
	return func(env *Environment) { env.now = t }
}

// WithObserver registers an Observer (see observer.go) that the
// Environment calls into at the documented points. Passing nil
// disables observation.
func WithObserver(o any) Option {
	return func(env *Environment) { env.observer = o }
}

// New creates an Environment ready to schedule Events into.
func New(opts ...Option) *Environment {
	env := &Environment{queue: newPriorityQueue()}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// Now returns the current virtual time.
func (env *Environment) Now() float64 { return env.now }

// Active returns the Process currently executing, or nil if none is.
func (env *Environment) Active() *Process { return env.active }

// Schedule pushes e onto the heap at now+delay with the given
// priority. delay must be non-negative.
func (env *Environment) Schedule(e *Event, priority Priority, delay float64) error {
	if delay < 0 {
		return errs.New(errs.NegativeDelay, delay)
	}
	env.seq++
	e.scheduled = true
	env.queue.push(&queueItem{
		time:     env.now + delay,
		priority: priority,
		seq:      env.seq,
		event:    e,
	})
	env.notifyScheduled(e)
	return nil
}

// Peek returns the next scheduled time, or +Inf if the queue is empty.
func (env *Environment) Peek() float64 {
	t, ok := env.queue.peekTime()
	if !ok {
		return math.Inf(1)
	}
	return t
}

// Step pops and fans the single earliest scheduled item, advancing Now
// to its time. It fails with an EmptyQueue error if nothing is
// scheduled. If that Event's outcome is a failure and it was not
// defused during fanning, Step re-raises that failure.
func (env *Environment) Step() error {
	item, ok := env.queue.pop()
	if !ok {
		return errs.New(errs.EmptyQueue, nil)
	}
	env.now = item.time
	env.notifyStep()

	e := item.event
	if e.st == processed {
		return nil // already fanned via another path (e.g. trigger then re-pop); nothing to do
	}

	cbs := e.callbacks
	e.callbacks = nil
	for _, cb := range cbs {
		if err := cb.fn(e); err != nil {
			e.st = processed
			return err
		}
	}
	e.st = processed

	if e.ok {
		env.notifySucceeded(e)
	} else {
		env.notifyFailed(e)
	}

	if !e.ok && !e.defused {
		if err, isErr := e.value.(error); isErr {
			return err
		}
		return errs.New(errs.InvalidYield, e.value)
	}
	return nil
}

// Run drives Step until the queue empties, until is reached, or some
// other error escapes Step.
//
// until may be nil (run to exhaustion), a float64 (run until that
// virtual time), or an *Event (run until that Event is processed).
func (env *Environment) Run(until any) error {
	switch u := until.(type) {
	case nil:
		// run to exhaustion
	case float64:
		sentinel := NewEvent(env)
		sentinel.Subscribe(func(*Event) error { return errs.New(errs.StopSimulation, nil) })
		if u < env.now {
			u = env.now
		}
		if err := env.Schedule(sentinel, Normal, u-env.now); err != nil {
			return err
		}
	case *Event:
		if !u.Processed() {
			u.Subscribe(func(*Event) error { return errs.New(errs.StopSimulation, nil) })
		}
	default:
		return errs.New(errs.InvalidYield, until)
	}

	for {
		err := env.Step()
		if err == nil {
			continue
		}
		if errs.Is(err, errs.EmptyQueue) || errs.Is(err, errs.StopSimulation) {
			return nil
		}
		return err
	}
}
