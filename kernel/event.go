package kernel

import (
	"fmt"

	"github.com/zond/simkernel/internal/errs"
)

type state int

const (
	pending state = iota
	triggered
	processed
)

type callbackEntry struct {
	token CallbackToken
	fn    Callback
}

// Event is the kernel's unit of scheduling and observation. It starts
// Pending, transitions once to Triggered(ok, value), and transitions
// once more to Processed when its callbacks have been fanned and
// released. Once Triggered, (ok, value) never changes.
type Event struct {
	env       *Environment
	st        state
	ok        bool
	value     any
	callbacks []callbackEntry
	nextToken CallbackToken
	scheduled bool
	defused   bool
}

// NewEvent creates a Pending Event bound to env.
func NewEvent(env *Environment) *Event {
	return &Event{env: env}
}

// Env returns the Environment this Event belongs to.
func (e *Event) Env() *Environment { return e.env }

// Subscribe registers fn to run when e is fanned. If e is already
// Processed, fn is invoked immediately (synchronously) with e, since
// there will be no future fan to register for.
func (e *Event) Subscribe(fn Callback) CallbackToken {
	if e.st == processed {
		_ = fn(e)
		return 0
	}
	e.nextToken++
	token := e.nextToken
	e.callbacks = append(e.callbacks, callbackEntry{token: token, fn: fn})
	return token
}

// Unsubscribe removes a previously registered callback, if still
// present. It is a no-op if the Event has already been processed (its
// callback list has been released) or the token is unknown.
func (e *Event) Unsubscribe(token CallbackToken) {
	if token == 0 {
		return
	}
	for i, cb := range e.callbacks {
		if cb.token == token {
			e.callbacks = append(e.callbacks[:i], e.callbacks[i+1:]...)
			return
		}
	}
}

// Triggered reports whether Succeed/Fail/Trigger has been called.
func (e *Event) Triggered() bool { return e.st != pending }

// Processed reports whether e's callbacks have been fanned.
func (e *Event) Processed() bool { return e.st == processed }

// Ok returns the Event's success flag. It is an error to call Ok before
// the Event is Triggered.
func (e *Event) Ok() (bool, error) {
	if e.st == pending {
		return false, fmt.Errorf("event: Ok called on a still-Pending event")
	}
	return e.ok, nil
}

// Value returns the Event's outcome value (the success value, or the
// failure error). It is an error to call Value before Triggered.
func (e *Event) Value() (any, error) {
	if e.st == pending {
		return nil, fmt.Errorf("event: Value called on a still-Pending event")
	}
	return e.value, nil
}

// Defused reports whether this Event's failure (if any) has been
// marked as handled, suppressing Step's re-raise.
func (e *Event) Defused() bool { return e.defused }

// SetDefused marks e's failure as handled.
func (e *Event) SetDefused(d bool) { e.defused = d }

// rawOutcome returns (ok, value) without the Pending guard, for kernel
// internals that already know e is Triggered.
func (e *Event) rawOutcome() (bool, any) { return e.ok, e.value }

// Succeed transitions a Pending Event to Triggered(ok=true, value) and
// schedules it (Normal priority, delay 0) if not already scheduled.
func (e *Event) Succeed(value any) (*Event, error) {
	if e.st != pending {
		return e, errs.New(errs.AlreadyTriggered, e)
	}
	e.succeedRaw(value)
	if !e.scheduled {
		if err := e.env.Schedule(e, Normal, 0); err != nil {
			return e, err
		}
	}
	return e, nil
}

// Fail transitions a Pending Event to Triggered(ok=false, err) and
// schedules it (Normal priority, delay 0) if not already scheduled.
func (e *Event) Fail(err error) (*Event, error) {
	if e.st != pending {
		return e, errs.New(errs.AlreadyTriggered, e)
	}
	if err == nil {
		err = fmt.Errorf("event failed with nil error")
	}
	e.failRaw(err)
	if !e.scheduled {
		if serr := e.env.Schedule(e, Normal, 0); serr != nil {
			return e, serr
		}
	}
	return e, nil
}

// Trigger copies the (ok, value) outcome of an already-Triggered source
// Event onto e and schedules e.
func (e *Event) Trigger(source *Event) error {
	if !source.Triggered() {
		return fmt.Errorf("event: Trigger source is not triggered")
	}
	if e.st != pending {
		return errs.New(errs.AlreadyTriggered, e)
	}
	ok, val := source.rawOutcome()
	if ok {
		e.succeedRaw(val)
	} else {
		e.failRaw(val)
	}
	return e.env.Schedule(e, Normal, 0)
}

// succeedRaw/failRaw set the outcome without scheduling, for internal
// callers (ConditionEvent, Process, Resource) that control scheduling
// themselves.
func (e *Event) succeedRaw(value any) {
	e.st = triggered
	e.ok = true
	e.value = value
}

func (e *Event) failRaw(err any) {
	e.st = triggered
	e.ok = false
	e.value = err
}

// And builds an AND-condition over e and other.
func (e *Event) And(other *Event) (*ConditionEvent, error) {
	return NewCondition(e.env, All, []*Event{e, other})
}

// Or builds an OR-condition over e and other.
func (e *Event) Or(other *Event) (*ConditionEvent, error) {
	return NewCondition(e.env, Any, []*Event{e, other})
}
