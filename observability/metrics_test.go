package observability

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zond/simkernel/kernel"
)

func TestMetricsObserverCountsEventsAndProcesses(t *testing.T) {
	m := NewMetricsObserver()
	env := kernel.New(kernel.WithObserver(m))

	env.Process(func(y kernel.Yield) (any, error) { return nil, nil })
	if err := env.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Two events: the Initialize bootstrap and the Process's own completion.
	if got := testutil.ToFloat64(m.eventsScheduledTotal); got != 2 {
		t.Errorf("eventsScheduledTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.eventsSucceededTotal); got != 2 {
		t.Errorf("eventsSucceededTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.processesStartedTotal); got != 1 {
		t.Errorf("processesStartedTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.processesCompletedTotal); got != 1 {
		t.Errorf("processesCompletedTotal = %v, want 1", got)
	}
}

func TestMetricsObserverCountsResourceActivity(t *testing.T) {
	m := NewMetricsObserver()
	env := kernel.New(kernel.WithObserver(m))
	r, err := kernel.NewResource(env, 1)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	if _, err := r.Request(); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got := testutil.ToFloat64(m.resourceRequestsTotal); got != 1 {
		t.Errorf("resourceRequestsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.resourceAcquiredTotal); got != 1 {
		t.Errorf("resourceAcquiredTotal = %v, want 1", got)
	}
}

func TestMetricsObserverRecordsStepDuration(t *testing.T) {
	m := NewMetricsObserver()
	env := kernel.New(kernel.WithObserver(m))

	env.Process(func(y kernel.Yield) (any, error) {
		tm, err := kernel.NewTimeout(env, 1, nil)
		if err != nil {
			return nil, err
		}
		if _, err := y(tm); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err := env.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var metric dto.Metric
	if err := m.stepDurationSeconds.Write(&metric); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Environment.Step runs at least twice here (process start, timeout
	// fire), so OnStep should have recorded at least one gap between them.
	if got := metric.GetHistogram().GetSampleCount(); got < 1 {
		t.Errorf("stepDurationSeconds sample count = %d, want >= 1", got)
	}
}

func TestMultipleObserversDoNotConflictOnRegistration(t *testing.T) {
	m1 := NewMetricsObserver()
	m2 := NewMetricsObserver()
	if m1.Registry() == m2.Registry() {
		t.Fatalf("each MetricsObserver should own a distinct registry")
	}
}
