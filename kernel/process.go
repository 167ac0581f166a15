package kernel

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/zond/simkernel/internal/coroutine"
	"github.com/zond/simkernel/internal/errs"
)

// Yield is what a Process body calls to suspend on an Event. It
// returns the Event's success value, or a non-nil error if the Event
// failed (including an Interrupted error delivered by Process.Interrupt)
// — the coroutine "catches" a failure delivered into it simply by
// checking err, rather than via a language-level throw/catch.
type Yield func(ev *Event) (value any, err error)

// Body is a Process's computation. It runs on its own coroutine (see
// internal/coroutine) and suspends only inside calls to yield.
type Body func(yield Yield) (result any, err error)

// Process adapts a suspendable Body to the Event protocol: it is
// itself an Event that triggers on the Body's completion (success) or
// on an uncaught failure/interrupt.
//
// Grounded on game/processing.go's load-run-persist shape
// (loadAndCall/call), generalized: "persist the result" becomes
// "transition to Triggered and schedule self."
type Process struct {
	*Event
	co         *coroutine.Coroutine
	name       string
	awaiting   *Event
	awaitToken CallbackToken
}

// Alive reports whether the Process has not yet completed or failed.
func (p *Process) Alive() bool { return !p.Triggered() }

// Name is a best-effort identifier for the Process, derived from its
// Body's function name, falling back to a short anonymous tag.
func (p *Process) Name() string { return p.name }

// Process constructs a Process bound to env. Construction immediately
// creates the Initialize bootstrap event: a pre-triggered success
// Event, URGENT-scheduled at delay 0, so the Process's first slice of
// execution runs before any NORMAL event scheduled at the same instant.
func (env *Environment) Process(body Body) *Process {
	p := &Process{Event: NewEvent(env), name: deriveName(body)}
	p.co = coroutine.New(func(rawYield func(any) (any, error)) (any, error) {
		return body(func(ev *Event) (any, error) { return rawYield(ev) })
	})

	env.notifyProcessStarted(p)

	init := NewEvent(env)
	init.Subscribe(func(*Event) error {
		env.resumeProcess(p, unit, nil)
		return nil
	})
	init.succeedRaw(unit)
	if err := env.Schedule(init, Urgent, 0); err != nil {
		// delay 0 on a fresh Environment is always valid; surfacing this
		// would require Process() to return an error, which would ripple
		// into every call site for a condition that cannot occur.
		panic(err)
	}
	return p
}

// resumeProcess drives one leg of the resume protocol: advance the
// coroutine with (inVal, inErr), then either suspend again, fail, or
// complete.
func (env *Environment) resumeProcess(p *Process, inVal any, inErr error) {
	if p.Triggered() {
		// A stale callback from an event the Process was interrupted away
		// from cannot reach here because Interrupt unsubscribes it, but
		// this guard keeps resumeProcess safe even if that invariant is
		// ever violated.
		return
	}
	p.awaiting = nil
	p.awaitToken = 0

	prevActive := env.active
	env.active = p
	yielded, done, result, coErr := p.co.Resume(inVal, inErr)
	env.active = prevActive

	if done {
		if coErr != nil {
			if errs.Is(coErr, errs.Interrupted) {
				cause, _ := errs.Cause(coErr)
				env.notifyProcessInterrupted(p, cause)
			}
			p.failRaw(coErr)
		} else {
			p.succeedRaw(result)
			env.notifyProcessCompleted(p, result)
		}
		_ = env.Schedule(p.Event, Normal, 0)
		return
	}

	y, ok := yielded.(*Event)
	if !ok {
		p.failRaw(errs.New(errs.InvalidYield, yielded))
		_ = env.Schedule(p.Event, Normal, 0)
		return
	}
	env.notifyProcessYielded(p, y)

	if y.Processed() {
		ok2, val := y.rawOutcome()
		if ok2 {
			env.resumeProcess(p, val, nil)
		} else {
			env.resumeProcess(p, nil, asError(val))
		}
		return
	}

	token := y.Subscribe(func(woken *Event) error {
		ok2, val := woken.rawOutcome()
		if ok2 {
			env.resumeProcess(p, val, nil)
		} else {
			env.resumeProcess(p, nil, asError(val))
		}
		return nil
	})
	p.awaiting = y
	p.awaitToken = token
}

// Interrupt wakes an alive Process with an Interrupted(cause) failure
// at its current suspension point, where its Body may recover by
// checking the error returned from yield.
//
// A Process can be interrupted while suspended on an Event it never
// got to observe trigger. Left registered, that Event's eventual
// callback would try to resume a Process that has already moved on
// (or resume it twice). Unregistering the pending callback here means
// the Event the Process was waiting on has no reason to know about it
// once interrupted away from it.
func (p *Process) Interrupt(cause any) error {
	if !p.Alive() {
		return nil
	}
	if p.awaiting != nil {
		p.awaiting.Unsubscribe(p.awaitToken)
		p.awaiting = nil
	}
	env := p.env
	delivery := NewEvent(env)
	delivery.Subscribe(func(*Event) error {
		env.resumeProcess(p, nil, errs.New(errs.Interrupted, cause))
		return nil
	})
	delivery.succeedRaw(unit)
	return env.Schedule(delivery, Urgent, 0)
}

func asError(v any) error {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return err
	}
	return errs.New(errs.InvalidYield, v)
}

func deriveName(body Body) string {
	name := runtime.FuncForPC(reflect.ValueOf(body).Pointer()).Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" || strings.Contains(name, "func") {
		return "process-" + uuid.NewString()[:8]
	}
	return name
}
