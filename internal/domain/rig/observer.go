package rig

import "context"

// Phase is a stage of BuildSerializedRig.
type Phase string

const (
	PhaseConstruct Phase = "construct"
	PhaseAttach    Phase = "attach"
	PhaseNested    Phase = "nested"
	PhaseDerive    Phase = "derive"
)

// EventKind classifies build events.
type EventKind string

const (
	EventPhaseStarted  EventKind = "phase_started"
	EventPhaseFinished EventKind = "phase_finished"
	EventBuilt         EventKind = "built"
	EventSkipped       EventKind = "skipped"
	EventFailed        EventKind = "failed"
)

// Event reports build progress. Index is the fragment position in the
// document, or -1 for phase events.
type Event struct {
	Kind  EventKind
	Phase Phase
	Key   ComponentKey
	Index int
	Err   error
}

// Observer receives build events synchronously.
type Observer interface {
	OnEvent(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnEvent(ctx context.Context, ev Event) { f(ctx, ev) }

type multiObserver []Observer

func (m multiObserver) OnEvent(ctx context.Context, ev Event) {
	for _, o := range m {
		o.OnEvent(ctx, ev)
	}
}

// Observers fans events out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (r *Rig) emit(ctx context.Context, ev Event) {
	if r.observer != nil {
		r.observer.OnEvent(ctx, ev)
	}
}
