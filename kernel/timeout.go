package kernel

import "github.com/zond/simkernel/internal/errs"

// NewTimeout creates an Event pre-triggered to succeed with value,
// scheduled delay time units from now at Normal priority. delay must
// be non-negative.
func NewTimeout(env *Environment, delay float64, value any) (*Event, error) {
	if delay < 0 {
		return nil, errs.New(errs.NegativeDelay, delay)
	}
	e := NewEvent(env)
	e.succeedRaw(value)
	if err := env.Schedule(e, Normal, delay); err != nil {
		return nil, err
	}
	return e, nil
}

// Timeout is the common case of NewTimeout: a bare delay with no
// payload, for a Process that just wants to wait.
func (env *Environment) Timeout(delay float64) (*Event, error) {
	return NewTimeout(env, delay, unit)
}
