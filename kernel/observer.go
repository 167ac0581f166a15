package kernel

// Observer hooks are optional, one-method interfaces an Environment's
// observer (registered via WithObserver) may implement any subset of —
// the same optional-capability pattern as io.Flusher/http.Pusher in the
// standard library. The Environment type-asserts for each at the
// relevant point and swallows whatever the hook does, including panics,
// so instrumentation never perturbs the simulation.
//
// Concrete implementations (Prometheus metrics, OpenTelemetry tracing)
// live in package observability and are never imported by this package.
type (
	EventScheduledObserver interface {
		OnEventScheduled(e *Event)
	}
	EventSucceededObserver interface {
		OnEventSucceeded(e *Event)
	}
	EventFailedObserver interface {
		OnEventFailed(e *Event)
	}
	ProcessStartedObserver interface {
		OnProcessStarted(p *Process)
	}
	ProcessYieldedObserver interface {
		OnProcessYielded(p *Process, y *Event)
	}
	ProcessCompletedObserver interface {
		OnProcessCompleted(p *Process, value any)
	}
	ProcessInterruptedObserver interface {
		OnProcessInterrupted(p *Process, cause any)
	}
	ResourceRequestedObserver interface {
		OnResourceRequested(r *Resource, g *GetEvent)
	}
	ResourceAcquiredObserver interface {
		OnResourceAcquired(r *Resource, g *GetEvent)
	}
	ResourceReleasedObserver interface {
		OnResourceReleased(r *Resource, p *PutEvent)
	}
	StepObserver interface {
		OnStep(now float64)
	}
)

// notify runs fn, recovering any panic, and does nothing at all if no
// observer is registered.
func (env *Environment) notify(fn func()) {
	if env.observer == nil {
		return
	}
	defer func() { _ = recover() }()
	fn()
}

func (env *Environment) notifyScheduled(e *Event) {
	env.notify(func() {
		if o, ok := env.observer.(EventScheduledObserver); ok {
			o.OnEventScheduled(e)
		}
	})
}

func (env *Environment) notifySucceeded(e *Event) {
	env.notify(func() {
		if o, ok := env.observer.(EventSucceededObserver); ok {
			o.OnEventSucceeded(e)
		}
	})
}

func (env *Environment) notifyFailed(e *Event) {
	env.notify(func() {
		if o, ok := env.observer.(EventFailedObserver); ok {
			o.OnEventFailed(e)
		}
	})
}

func (env *Environment) notifyProcessStarted(p *Process) {
	env.notify(func() {
		if o, ok := env.observer.(ProcessStartedObserver); ok {
			o.OnProcessStarted(p)
		}
	})
}

func (env *Environment) notifyProcessYielded(p *Process, y *Event) {
	env.notify(func() {
		if o, ok := env.observer.(ProcessYieldedObserver); ok {
			o.OnProcessYielded(p, y)
		}
	})
}

func (env *Environment) notifyProcessCompleted(p *Process, value any) {
	env.notify(func() {
		if o, ok := env.observer.(ProcessCompletedObserver); ok {
			o.OnProcessCompleted(p, value)
		}
	})
}

func (env *Environment) notifyProcessInterrupted(p *Process, cause any) {
	env.notify(func() {
		if o, ok := env.observer.(ProcessInterruptedObserver); ok {
			o.OnProcessInterrupted(p, cause)
		}
	})
}

func (env *Environment) notifyResourceRequested(r *Resource, g *GetEvent) {
	env.notify(func() {
		if o, ok := env.observer.(ResourceRequestedObserver); ok {
			o.OnResourceRequested(r, g)
		}
	})
}

func (env *Environment) notifyResourceAcquired(r *Resource, g *GetEvent) {
	env.notify(func() {
		if o, ok := env.observer.(ResourceAcquiredObserver); ok {
			o.OnResourceAcquired(r, g)
		}
	})
}

func (env *Environment) notifyResourceReleased(r *Resource, p *PutEvent) {
	env.notify(func() {
		if o, ok := env.observer.(ResourceReleasedObserver); ok {
			o.OnResourceReleased(r, p)
		}
	})
}

func (env *Environment) notifyStep() {
	env.notify(func() {
		if o, ok := env.observer.(StepObserver); ok {
			o.OnStep(env.now)
		}
	})
}
