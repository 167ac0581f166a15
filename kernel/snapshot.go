package kernel

import (
	"sort"

	json "github.com/goccy/go-json"
)

// pendingSnapshot describes one still-unfanned scheduled item.
type pendingSnapshot struct {
	Time     float64 `json:"time"`
	Priority int     `json:"priority"`
	Seq      uint64  `json:"seq"`
}

// resourceSnapshot describes one Resource's instantaneous accounting.
type resourceSnapshot struct {
	Capacity  int `json:"capacity"`
	Users     int `json:"users"`
	QueueLen  int `json:"queueLength"`
	Available int `json:"available"`
}

// environmentSnapshot is the read-only JSON view Snapshot renders. It
// carries no Event or Process identity, only the counts and
// timestamps needed to inspect a simulation from the outside — this
// is diagnostic output, not the persistence the kernel otherwise
// leaves to its caller.
type environmentSnapshot struct {
	Now       float64            `json:"now"`
	Pending   []pendingSnapshot  `json:"pending"`
	Resources []resourceSnapshot `json:"resources,omitempty"`
}

// Snapshot renders a read-only JSON view of the Environment's virtual
// clock, its pending queue, and the accounting of any Resources
// passed in (duplicates are collapsed). It never mutates simulation
// state and is safe to call between Step calls.
func (env *Environment) Snapshot(resources ...*Resource) ([]byte, error) {
	items := env.queue.items()
	pending := make([]pendingSnapshot, len(items))
	for i, it := range items {
		pending[i] = pendingSnapshot{Time: it.time, Priority: int(it.priority), Seq: it.seq}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Time != pending[j].Time {
			return pending[i].Time < pending[j].Time
		}
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority < pending[j].Priority
		}
		return pending[i].Seq < pending[j].Seq
	})

	seen := NewSet[*Resource]()
	var resSnaps []resourceSnapshot
	for _, r := range resources {
		if r == nil || seen.Has(r) {
			continue
		}
		seen.Set(r)
		resSnaps = append(resSnaps, resourceSnapshot{
			Capacity:  r.Capacity(),
			Users:     r.Users(),
			QueueLen:  r.QueueLen(),
			Available: r.Capacity() - r.Users(),
		})
	}

	return json.Marshal(environmentSnapshot{
		Now:       env.now,
		Pending:   pending,
		Resources: resSnaps,
	})
}
