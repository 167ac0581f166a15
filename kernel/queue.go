package kernel

// queueItem is one scheduled entry: Event e fires at time, ties broken
// by priority (Urgent before Normal), ties broken by seq (FIFO).
type queueItem struct {
	time     float64
	priority Priority
	seq      uint64
	event    *Event
}

// less orders queueItems by (time, priority, seq): arrival time first,
// then urgency, then insertion order as the final tiebreak.
func (a *queueItem) less(b *queueItem) bool {
	if a.time != b.time {
		return a.time < b.time
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

// priorityQueue is a binary min-heap of *queueItem ordered by
// queueItem.less, backing the Environment's event schedule. It exists
// to give Step/peekTime O(log n) access to the next-due item; nothing
// outside package kernel ever sees a queueItem.
type priorityQueue struct {
	data []*queueItem
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{}
}

func (q *priorityQueue) push(item *queueItem) {
	q.data = append(q.data, item)
	q.bubbleUp(len(q.data) - 1)
}

func (q *priorityQueue) pop() (*queueItem, bool) {
	if len(q.data) == 0 {
		return nil, false
	}
	top := q.data[0]
	last := len(q.data) - 1
	q.data[0] = q.data[last]
	q.data[last] = nil
	q.data = q.data[:last]
	if len(q.data) > 0 {
		q.bubbleDown(0)
	}
	return top, true
}

func (q *priorityQueue) peekTime() (float64, bool) {
	if len(q.data) == 0 {
		return 0, false
	}
	return q.data[0].time, true
}

func (q *priorityQueue) size() int { return len(q.data) }

// items returns a copy of the queue's contents in internal (not
// time-sorted) order, for Snapshot inspection without disturbing the
// heap.
func (q *priorityQueue) items() []*queueItem {
	out := make([]*queueItem, len(q.data))
	copy(out, q.data)
	return out
}

func (q *priorityQueue) bubbleUp(index int) {
	for index > 0 {
		parent := (index - 1) / 2
		if q.data[index].less(q.data[parent]) {
			q.data[index], q.data[parent] = q.data[parent], q.data[index]
			index = parent
		} else {
			break
		}
	}
}

func (q *priorityQueue) bubbleDown(index int) {
	size := len(q.data)
	for {
		left := 2*index + 1
		right := 2*index + 2
		smallest := index

		if left < size && q.data[left].less(q.data[smallest]) {
			smallest = left
		}
		if right < size && q.data[right].less(q.data[smallest]) {
			smallest = right
		}
		if smallest == index {
			break
		}
		q.data[index], q.data[smallest] = q.data[smallest], q.data[index]
		index = smallest
	}
}
