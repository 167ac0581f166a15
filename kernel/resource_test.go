package kernel

import "testing"

func TestResourceGrantsUpToCapacity(t *testing.T) {
	env := New()
	r, err := NewResource(env, 2)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	g1, err := r.Request()
	if err != nil {
		t.Fatalf("Request g1: %v", err)
	}
	g2, err := r.Request()
	if err != nil {
		t.Fatalf("Request g2: %v", err)
	}
	if !g1.Triggered() || !g2.Triggered() {
		t.Fatalf("both requests should be granted immediately under capacity")
	}
	if r.Users() != 2 {
		t.Errorf("Users() = %d, want 2", r.Users())
	}
}

func TestResourceQueuesBeyondCapacity(t *testing.T) {
	env := New()
	r, err := NewResource(env, 1)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	g1, err := r.Request()
	if err != nil {
		t.Fatalf("Request g1: %v", err)
	}
	g2, err := r.Request()
	if err != nil {
		t.Fatalf("Request g2: %v", err)
	}
	if !g1.Triggered() {
		t.Fatalf("g1 should be granted immediately")
	}
	if g2.Triggered() {
		t.Fatalf("g2 should queue, capacity exhausted")
	}
	if r.QueueLen() != 1 {
		t.Errorf("QueueLen() = %d, want 1", r.QueueLen())
	}
	if _, err := r.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !g2.Triggered() {
		t.Errorf("g2 should be granted once g1 released")
	}
	if r.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0 after grant", r.QueueLen())
	}
}

func TestResourceFifoFairness(t *testing.T) {
	env := New()
	r, err := NewResource(env, 1)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	first, err := r.Request()
	if err != nil {
		t.Fatalf("Request first: %v", err)
	}
	second, err := r.Request()
	if err != nil {
		t.Fatalf("Request second: %v", err)
	}
	third, err := r.Request()
	if err != nil {
		t.Fatalf("Request third: %v", err)
	}
	if _, err := r.Release(); err != nil {
		t.Fatalf("Release (from first): %v", err)
	}
	if !second.Triggered() || third.Triggered() {
		t.Fatalf("second should be granted before third: second=%v third=%v", second.Triggered(), third.Triggered())
	}
	_ = first
}

func TestResourceCancelRemovesFromQueue(t *testing.T) {
	env := New()
	r, err := NewResource(env, 1)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	if _, err := r.Request(); err != nil {
		t.Fatalf("Request: %v", err)
	}
	g2, err := r.Request()
	if err != nil {
		t.Fatalf("Request g2: %v", err)
	}
	g2.Cancel()
	if r.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0 after cancel", r.QueueLen())
	}
}

func TestResourcePutQueueDrainsSynchronously(t *testing.T) {
	env := New()
	r, err := NewResource(env, 2)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	if _, err := r.Request(); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := r.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if r.PutQueueLen() != 0 {
		t.Errorf("PutQueueLen() = %d, want 0 (one unit is checked out, which covers a release of one)", r.PutQueueLen())
	}
}

func TestResourcePutBlocksUntilUsersCatchUp(t *testing.T) {
	env := New()
	r, err := NewResource(env, 5)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	if _, err := r.Get(2); err != nil {
		t.Fatalf("Get(2): %v", err)
	}
	p, err := r.Put(5)
	if err != nil {
		t.Fatalf("Put(5): %v", err)
	}
	if p.Triggered() {
		t.Fatalf("Put(5) should block: only 2 units are currently checked out")
	}
	if r.PutQueueLen() != 1 {
		t.Errorf("PutQueueLen() = %d, want 1", r.PutQueueLen())
	}
	g2, err := r.Get(3)
	if err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if !g2.Triggered() {
		t.Fatalf("Get(3) should be granted immediately under capacity")
	}
	if !p.Triggered() {
		t.Errorf("Put(5) should unblock once Get(3) raises users to 5")
	}
	if r.Users() != 0 {
		t.Errorf("Users() = %d, want 0 after the release drains", r.Users())
	}
}

func TestResourceInvalidAmountRejected(t *testing.T) {
	env := New()
	r, err := NewResource(env, 1)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	if _, err := r.Get(0); err == nil {
		t.Errorf("expected CapacityViolation for amount 0")
	}
	if _, err := NewResource(env, 0); err == nil {
		t.Errorf("expected CapacityViolation for zero-capacity resource")
	}
}

func TestPriorityResourceServesLowerPriorityFirst(t *testing.T) {
	env := New()
	r, err := NewPriorityResource(env, 1)
	if err != nil {
		t.Fatalf("NewPriorityResource: %v", err)
	}
	holder, err := r.GetPriority(1, 5)
	if err != nil {
		t.Fatalf("GetPriority holder: %v", err)
	}
	low, err := r.GetPriority(1, 1)
	if err != nil {
		t.Fatalf("GetPriority low: %v", err)
	}
	high, err := r.GetPriority(1, 10)
	if err != nil {
		t.Fatalf("GetPriority high: %v", err)
	}
	if _, err := r.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !low.Triggered() || high.Triggered() {
		t.Fatalf("lower-priority request should be served first: low=%v high=%v", low.Triggered(), high.Triggered())
	}
	_ = holder
}
