package kernel

import "testing"

func TestEventTriggeredExactlyOnce(t *testing.T) {
	env := New()
	e := NewEvent(env)
	if e.Triggered() {
		t.Fatalf("fresh event reports Triggered")
	}
	if _, err := e.Succeed(1); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if !e.Triggered() {
		t.Fatalf("event should be Triggered after Succeed")
	}
	if _, err := e.Succeed(2); err == nil {
		t.Fatalf("expected AlreadyTriggered error on second Succeed")
	}
}

func TestEventOkValueErrorBeforeTrigger(t *testing.T) {
	env := New()
	e := NewEvent(env)
	if _, err := e.Ok(); err == nil {
		t.Errorf("expected error reading Ok before Trigger")
	}
	if _, err := e.Value(); err == nil {
		t.Errorf("expected error reading Value before Trigger")
	}
}

func TestEventCallbacksFanInSubscribeOrder(t *testing.T) {
	env := New()
	e := NewEvent(env)
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		e.Subscribe(func(*Event) error {
			order = append(order, i)
			return nil
		})
	}
	if _, err := e.Succeed(nil); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if err := env.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, got := range order {
		if got != i {
			t.Errorf("order[%d] = %d, want %d", i, got, i)
		}
	}
}

func TestEventSubscribeAfterProcessedRunsImmediately(t *testing.T) {
	env := New()
	e := NewEvent(env)
	if _, err := e.Succeed(7); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if err := env.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var got any
	e.Subscribe(func(ev *Event) error {
		got, _ = ev.Value()
		return nil
	})
	if got != 7 {
		t.Errorf("late subscribe got %v, want 7", got)
	}
}

func TestEventUnsubscribePreventsCallback(t *testing.T) {
	env := New()
	e := NewEvent(env)
	called := false
	token := e.Subscribe(func(*Event) error {
		called = true
		return nil
	})
	e.Unsubscribe(token)
	if _, err := e.Succeed(nil); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if err := env.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Errorf("unsubscribed callback was still invoked")
	}
}

func TestEventDefuseSuppressesReraise(t *testing.T) {
	env := New()
	e := NewEvent(env)
	e.Subscribe(func(ev *Event) error {
		ev.SetDefused(true)
		return nil
	})
	if _, err := e.Fail(errTest("boom")); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := env.Run(nil); err != nil {
		t.Errorf("expected defused failure not to escape Run, got %v", err)
	}
}

func TestEventUndefusedFailureEscapesRun(t *testing.T) {
	env := New()
	e := NewEvent(env)
	if _, err := e.Fail(errTest("boom")); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := env.Run(nil); err == nil {
		t.Errorf("expected undefused failure to escape Run")
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
