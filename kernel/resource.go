package kernel

import (
	"github.com/zond/simkernel/internal/errs"
)

// GetEvent is the Event returned by Resource.Get: it triggers once the
// requested amount has been granted.
type GetEvent struct {
	*Event
	resource *Resource
	amount   int
	priority int // meaningful only when resource.priorityOrdered
}

// Amount is how much capacity this request asked for.
func (g *GetEvent) Amount() int { return g.amount }

// Cancel withdraws a still-pending request. It is a no-op once the
// request has already been granted.
func (g *GetEvent) Cancel() {
	if g.Triggered() {
		return
	}
	q := g.resource.getQueue
	for i, item := range q {
		if item == g {
			g.resource.getQueue = append(q[:i], q[i+1:]...)
			return
		}
	}
}

// PutEvent is the Event returned by Resource.Put: it triggers once the
// released amount has been accepted back into the resource.
type PutEvent struct {
	*Event
	resource *Resource
	amount   int
}

// Amount is how much capacity this release returns.
func (p *PutEvent) Amount() int { return p.amount }

// Cancel withdraws a still-pending release. It is a no-op once the
// release has already been accepted.
func (p *PutEvent) Cancel() {
	if p.Triggered() {
		return
	}
	q := p.resource.putQueue
	for i, item := range q {
		if item == p {
			p.resource.putQueue = append(q[:i], q[i+1:]...)
			return
		}
	}
}

// Resource is a FIFO-arbitrated pool of capacity shared by Processes,
// grounded on storage/queue/queue.go's drain-while-satisfiable
// dispatch loop: each Get/Put construction re-walks both queues,
// granting everything that currently fits, stopping at the first
// request capacity cannot satisfy.
type Resource struct {
	env             *Environment
	capacity        int
	users           int
	getQueue        []*GetEvent
	putQueue        []*PutEvent
	priorityOrdered bool
}

// NewResource creates a Resource with the given capacity (must be >
// 0).
func NewResource(env *Environment, capacity int) (*Resource, error) {
	if capacity <= 0 {
		return nil, errs.New(errs.CapacityViolation, capacity)
	}
	return &Resource{env: env, capacity: capacity}, nil
}

// NewPriorityResource creates a Resource whose getQueue is ordered by
// request priority (lower first), ties broken FIFO.
func NewPriorityResource(env *Environment, capacity int) (*Resource, error) {
	r, err := NewResource(env, capacity)
	if err != nil {
		return nil, err
	}
	r.priorityOrdered = true
	return r, nil
}

// Capacity returns the resource's total capacity.
func (r *Resource) Capacity() int { return r.capacity }

// Users returns the amount of capacity currently checked out.
func (r *Resource) Users() int { return r.users }

// QueueLen returns how many Get requests are waiting ungranted.
func (r *Resource) QueueLen() int { return len(r.getQueue) }

// PutQueueLen returns how many Put requests are waiting unaccepted. A
// release can only be accepted once at least that much capacity is
// actually checked out, so a Put for more than the current Users() count
// queues until enough Gets raise it; a Put queued behind a blocked Put
// also waits, since releases are accepted in FIFO order.
func (r *Resource) PutQueueLen() int { return len(r.putQueue) }

// Get requests amount units of capacity (default 1 via Request). The
// returned Event triggers once granted.
func (r *Resource) Get(amount int) (*GetEvent, error) {
	return r.get(amount, 0)
}

// GetPriority requests amount units of capacity with an explicit
// priority, meaningful only for a priority-ordered Resource (lower
// values are served first).
func (r *Resource) GetPriority(amount int, priority int) (*GetEvent, error) {
	return r.get(amount, priority)
}

func (r *Resource) get(amount, priority int) (*GetEvent, error) {
	if amount <= 0 {
		return nil, errs.New(errs.CapacityViolation, amount)
	}
	g := &GetEvent{Event: NewEvent(r.env), resource: r, amount: amount, priority: priority}
	if r.priorityOrdered {
		r.insertGet(g)
	} else {
		r.getQueue = append(r.getQueue, g)
	}
	r.env.notifyResourceRequested(r, g)
	r.triggerGet()
	r.triggerPut()
	return g, nil
}

// Request is the common-case alias for Get(1).
func (r *Resource) Request() (*GetEvent, error) { return r.Get(1) }

// insertGet inserts g into the priority-ordered getQueue, after every
// existing entry of priority <= g's (stable insertion: ties keep FIFO
// order).
func (r *Resource) insertGet(g *GetEvent) {
	i := len(r.getQueue)
	for i > 0 && r.getQueue[i-1].priority > g.priority {
		i--
	}
	r.getQueue = append(r.getQueue, nil)
	copy(r.getQueue[i+1:], r.getQueue[i:])
	r.getQueue[i] = g
}

// Put releases amount units of capacity (default 1 via Release). The
// returned Event triggers once the resource has accepted the release.
func (r *Resource) Put(amount int) (*PutEvent, error) {
	if amount <= 0 {
		return nil, errs.New(errs.CapacityViolation, amount)
	}
	p := &PutEvent{Event: NewEvent(r.env), resource: r, amount: amount}
	r.putQueue = append(r.putQueue, p)
	r.triggerPut()
	return p, nil
}

// Release is the common-case alias for Put(1).
func (r *Resource) Release() (*PutEvent, error) { return r.Put(1) }

// triggerGet grants getQueue entries front-to-back while capacity
// allows, stopping at the first request too large to fit: a later,
// smaller request is never let ahead of one still waiting, so the
// queue stays FIFO-fair instead of degrading into best-fit packing.
func (r *Resource) triggerGet() {
	for len(r.getQueue) > 0 {
		g := r.getQueue[0]
		if g.Triggered() {
			r.getQueue = r.getQueue[1:]
			continue
		}
		if r.users+g.amount > r.capacity {
			break
		}
		r.getQueue = r.getQueue[1:]
		r.users += g.amount
		_, _ = g.Succeed(unit) // pending by construction; cannot error
		r.env.notifyResourceAcquired(r, g)
	}
}

// triggerPut accepts putQueue releases front-to-back, but only while
// enough capacity is actually checked out to cover the release: a Put
// for more than the current Users() count blocks in place rather than
// driving users negative, symmetric to how triggerGet blocks a Get
// that would exceed capacity. get and Put each re-run the other
// queue's arbitration once they've updated users, so a Get that raises
// users past a blocked Put's threshold unblocks it without waiting for
// an unrelated future Put.
func (r *Resource) triggerPut() {
	for len(r.putQueue) > 0 {
		p := r.putQueue[0]
		if p.Triggered() {
			r.putQueue = r.putQueue[1:]
			continue
		}
		if r.users < p.amount {
			break
		}
		r.putQueue = r.putQueue[1:]
		r.users -= p.amount
		_, _ = p.Succeed(unit) // pending by construction; cannot error
		r.env.notifyResourceReleased(r, p)
	}
	r.triggerGet()
}
