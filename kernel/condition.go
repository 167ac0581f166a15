package kernel

import (
	"fmt"
	"iter"

	"github.com/zond/simkernel/internal/errs"
)

// Predicate decides, given the full child list and how many have been
// observed triggered so far, whether a ConditionEvent should succeed.
type Predicate func(children []*Event, satisfied int) bool

// All succeeds once every child has triggered.
func All(children []*Event, satisfied int) bool { return satisfied == len(children) }

// Any succeeds once any one child has triggered (or immediately for an
// empty child set).
func Any(children []*Event, satisfied int) bool { return satisfied > 0 || len(children) == 0 }

// AllOf builds an n-ary AND-condition over events, the variadic
// convenience every real consumer of And needs: "wait for all of
// these N events" rather than chaining pairwise And calls.
func AllOf(env *Environment, events ...*Event) (*ConditionEvent, error) {
	return NewCondition(env, All, events)
}

// AnyOf builds an n-ary OR-condition over events.
func AnyOf(env *Environment, events ...*Event) (*ConditionEvent, error) {
	return NewCondition(env, Any, events)
}

// ConditionValue is the ordered result of a successful ConditionEvent:
// the subset of children that were Processed by the time the condition
// itself was processed, mapped to their outcome values, in child order.
type ConditionValue struct {
	keys   []*Event
	values map[*Event]any
}

func newConditionValue() *ConditionValue {
	return &ConditionValue{values: map[*Event]any{}}
}

func (cv *ConditionValue) set(e *Event, v any) {
	if _, ok := cv.values[e]; !ok {
		cv.keys = append(cv.keys, e)
	}
	cv.values[e] = v
}

// Get returns the value the given child triggered with, if it was part
// of this ConditionValue.
func (cv *ConditionValue) Get(e *Event) (any, bool) {
	v, ok := cv.values[e]
	return v, ok
}

// Len reports how many children contributed a value.
func (cv *ConditionValue) Len() int { return len(cv.keys) }

// All iterates the contributing children in their original condition
// order, mirroring structs/utils.go's iter.Seq2-based All() walkers.
func (cv *ConditionValue) All() iter.Seq2[*Event, any] {
	return func(yield func(*Event, any) bool) {
		for _, k := range cv.keys {
			if !yield(k, cv.values[k]) {
				return
			}
		}
	}
}

// ConditionEvent is an Event satisfied by a predicate over a fixed set
// of child Events.
type ConditionEvent struct {
	*Event
	predicate   Predicate
	children    []*Event
	satisfied   int
	childTokens map[*Event]CallbackToken
}

// NewCondition builds a ConditionEvent over children, evaluated with
// predicate. All children (and the condition itself) must share the
// same Environment.
func NewCondition(env *Environment, predicate Predicate, children []*Event) (*ConditionEvent, error) {
	for _, c := range children {
		if c.env != env {
			return nil, errs.New(errs.MixedEnvironment, nil)
		}
	}
	cond := &ConditionEvent{
		Event:       NewEvent(env),
		predicate:   predicate,
		children:    children,
		childTokens: map[*Event]CallbackToken{},
	}
	// Registered first, so it fans before any subscriber that attaches
	// to the condition afterwards (e.g. a waiting Process), ensuring
	// they observe the built ConditionValue rather than the placeholder.
	cond.Event.Subscribe(cond.buildValue)

	if len(children) == 0 {
		if predicate(children, 0) {
			if _, err := cond.Event.Succeed(unit); err != nil {
				return nil, err
			}
		}
		return cond, nil
	}

	for _, c := range children {
		if cond.Triggered() {
			break // already resolved by an earlier child; no need to watch the rest
		}
		if c.Processed() {
			cond.check(c)
			continue
		}
		child := c
		token := child.Subscribe(func(*Event) error {
			cond.check(child)
			return nil
		})
		cond.childTokens[child] = token
	}
	return cond, nil
}

// check runs each time a watched child settles: count it, propagate the
// first failure outright (AND/OR both fail fast), otherwise ask the
// predicate whether enough children have triggered to resolve self.
func (cond *ConditionEvent) check(c *Event) {
	if cond.Triggered() {
		return
	}
	cond.satisfied++
	ok, val := c.rawOutcome()
	if !ok {
		c.SetDefused(true)
		err, isErr := val.(error)
		if !isErr {
			err = fmt.Errorf("%v", val)
		}
		_, _ = cond.Event.Fail(err) // st is pending here; cannot error
		cond.removeCheckCallbacks()
		return
	}
	if cond.predicate(cond.children, cond.satisfied) {
		_, _ = cond.Event.Succeed(unit) // st is pending here; cannot error
		cond.removeCheckCallbacks()
	}
}

// removeCheckCallbacks unregisters this condition's per-child check
// callbacks once satisfied, using stable tokens rather than closure
// identity, so the remaining children's callbacks are actually freed
// instead of silently staying registered on events nobody watches
// anymore.
func (cond *ConditionEvent) removeCheckCallbacks() {
	for child, token := range cond.childTokens {
		child.Unsubscribe(token)
	}
	cond.childTokens = nil
}

// buildValue runs once self is fanned, replacing the success
// placeholder with the real ConditionValue. A failure outcome already
// carries the first failed child's value and needs no further work.
func (cond *ConditionEvent) buildValue(self *Event) error {
	ok, _ := self.rawOutcome()
	if !ok {
		return nil
	}
	cv := newConditionValue()
	for _, c := range cond.children {
		if c.Processed() {
			_, v := c.rawOutcome()
			cv.set(c, v)
		}
	}
	self.value = cv
	return nil
}
