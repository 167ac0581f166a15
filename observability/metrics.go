// Package observability provides ready-made observers for
// kernel.WithObserver: Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zond/simkernel/kernel"
)

// MetricsObserver records simulation activity as Prometheus metrics.
// Grounded on coreengine/observability/metrics.go's
// counter/histogram-per-concern shape, generalized from
// pipeline/agent/LLM/gRPC concerns to event/process/resource
// concerns; registered into a private Registry (rather than the
// default global one) so more than one MetricsObserver — one per
// Environment under test, say — can coexist without a duplicate-
// registration panic.
type MetricsObserver struct {
	registry *prometheus.Registry

	eventsScheduledTotal prometheus.Counter
	eventsSucceededTotal prometheus.Counter
	eventsFailedTotal    prometheus.Counter

	processesStartedTotal     prometheus.Counter
	processesCompletedTotal   prometheus.Counter
	processesInterruptedTotal prometheus.Counter

	resourceRequestsTotal prometheus.Counter
	resourceAcquiredTotal prometheus.Counter
	resourceReleasedTotal prometheus.Counter

	stepDurationSeconds prometheus.Histogram
	lastStepWallClock   time.Time
}

// NewMetricsObserver builds a MetricsObserver with its own Registry,
// obtainable via Registry() for exposition (e.g. promhttp.HandlerFor).
func NewMetricsObserver() *MetricsObserver {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &MetricsObserver{
		registry: reg,
		eventsScheduledTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_events_scheduled_total",
			Help: "Total number of events scheduled onto the queue.",
		}),
		eventsSucceededTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_events_succeeded_total",
			Help: "Total number of events that triggered successfully.",
		}),
		eventsFailedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_events_failed_total",
			Help: "Total number of events that triggered with a failure.",
		}),
		processesStartedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_processes_started_total",
			Help: "Total number of processes started.",
		}),
		processesCompletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_processes_completed_total",
			Help: "Total number of processes that ran to completion.",
		}),
		processesInterruptedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_processes_interrupted_total",
			Help: "Total number of processes that were interrupted.",
		}),
		resourceRequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_resource_requests_total",
			Help: "Total number of resource get requests.",
		}),
		resourceAcquiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_resource_acquired_total",
			Help: "Total number of resource get requests granted.",
		}),
		resourceReleasedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "simkernel_resource_released_total",
			Help: "Total number of resource put requests accepted.",
		}),
		stepDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simkernel_step_duration_seconds",
			Help:    "Wall-clock time between successive Environment.Step calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Registry returns the private Registry metrics were registered into.
func (m *MetricsObserver) Registry() *prometheus.Registry { return m.registry }

func (m *MetricsObserver) OnEventScheduled(*kernel.Event) { m.eventsScheduledTotal.Inc() }

func (m *MetricsObserver) OnEventSucceeded(*kernel.Event) { m.eventsSucceededTotal.Inc() }

func (m *MetricsObserver) OnEventFailed(*kernel.Event) { m.eventsFailedTotal.Inc() }

func (m *MetricsObserver) OnProcessStarted(*kernel.Process) { m.processesStartedTotal.Inc() }

func (m *MetricsObserver) OnProcessCompleted(*kernel.Process, any) { m.processesCompletedTotal.Inc() }

func (m *MetricsObserver) OnProcessInterrupted(*kernel.Process, any) {
	m.processesInterruptedTotal.Inc()
}

// OnStep records the wall-clock time elapsed since the previous Step,
// the cost of advancing the simulation one event at a time rather than
// virtual-time progress (which Step's now argument already gives the
// caller for free).
func (m *MetricsObserver) OnStep(now float64) {
	wall := time.Now()
	if !m.lastStepWallClock.IsZero() {
		m.stepDurationSeconds.Observe(wall.Sub(m.lastStepWallClock).Seconds())
	}
	m.lastStepWallClock = wall
}

func (m *MetricsObserver) OnResourceRequested(*kernel.Resource, *kernel.GetEvent) {
	m.resourceRequestsTotal.Inc()
}

func (m *MetricsObserver) OnResourceAcquired(*kernel.Resource, *kernel.GetEvent) {
	m.resourceAcquiredTotal.Inc()
}

func (m *MetricsObserver) OnResourceReleased(*kernel.Resource, *kernel.PutEvent) {
	m.resourceReleasedTotal.Inc()
}
