// Package kernel implements a discrete-event simulation core: a
// priority-ordered virtual clock, suspendable Processes, AND/OR
// ConditionEvents, and capacity-bounded Resources.
//
// The kernel is strictly single-threaded and cooperative (see
// Environment.Step): callers never need locks of their own around
// Events, Processes, or Resources, because exactly one goroutine is
// ever actually running kernel code at a time.
package kernel

// Priority is the tie-break class for events scheduled at the same
// virtual time. Urgent events fan before Normal ones at equal time.
type Priority int

const (
	Urgent Priority = 0
	Normal Priority = 1
)

// unit is the sentinel success value used where a caller has no
// meaningful payload (e.g. Timeout's default value, a Process's
// Initialize bootstrap event, a GetResource/PutResource grant).
type unitType struct{}

var unit = unitType{}

// CallbackToken identifies a registered callback so it can later be
// removed with Event.Unsubscribe. Tokens are unique per Event.
type CallbackToken uint64

// Callback is invoked with the Event it was registered on, once that
// Event is fanned. Returning a non-nil error aborts the remainder of
// that Event's fan and propagates out of Environment.Step.
type Callback func(*Event) error
