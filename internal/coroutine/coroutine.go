// Package coroutine adapts Go goroutines into cooperative coroutines: a
// goroutine that only ever runs while something else is blocked waiting
// for it, and vice versa.
//
// Go has no native generator/coroutine construct, so this reconstructs
// one from a goroutine paired with an unbuffered rendezvous channel in
// each direction, grounded on other_examples/5758fcf4_tcard-coro's
// New/Resume/yield protocol. Exactly one of {the caller of Resume, the
// coroutine goroutine} is ever running, so a strictly single-threaded,
// cooperative caller can rely on Go's runtime-level goroutine scheduling
// without needing its own locks.
package coroutine

import "fmt"

// Body is the function a Coroutine runs. It receives a yield function: each
// call to yield suspends the coroutine, handing "out" to whatever called
// Resume, and blocks until the next Resume call supplies (in, inErr) back.
type Body func(yield func(out any) (in any, inErr error)) (result any, err error)

type resumeMsg struct {
	value any
	err   error
}

type yieldMsg struct {
	yielded any
	done    bool
	result  any
	err     error
}

// Coroutine is a suspended computation driven by Resume.
type Coroutine struct {
	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg
}

// New starts body on its own goroutine, parked until the first Resume.
func New(body Body) *Coroutine {
	c := &Coroutine{
		resumeCh: make(chan resumeMsg),
		yieldCh:  make(chan yieldMsg),
	}
	go c.run(body)
	return c
}

func (c *Coroutine) run(body Body) {
	<-c.resumeCh // wait for the kick-off Resume

	result, err := c.safeCall(body)
	c.yieldCh <- yieldMsg{done: true, result: result, err: err}
}

func (c *Coroutine) safeCall(body Body) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if asErr, ok := r.(error); ok {
				err = asErr
			} else {
				err = fmt.Errorf("coroutine: panic: %v", r)
			}
		}
	}()
	return body(c.yield)
}

func (c *Coroutine) yield(out any) (any, error) {
	c.yieldCh <- yieldMsg{yielded: out}
	in := <-c.resumeCh
	return in.value, in.err
}

// Resume hands (value, resumeErr) to the coroutine's most recent yield call
// (ignored on the first call, which only starts execution) and blocks until
// the coroutine either yields again or returns.
//
// yielded is whatever the coroutine passed to yield; done reports whether
// the coroutine returned instead of yielding, in which case result/err are
// its return values.
func (c *Coroutine) Resume(value any, resumeErr error) (yielded any, done bool, result any, err error) {
	c.resumeCh <- resumeMsg{value: value, err: resumeErr}
	msg := <-c.yieldCh
	return msg.yielded, msg.done, msg.result, msg.err
}
