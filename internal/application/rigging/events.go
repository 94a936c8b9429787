package rigging

import (
	"context"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/pubsub"
)

// EventPublisher forwards rig build events to a broker so the CLI can show
// progress while a build runs.
type EventPublisher struct {
	broker *pubsub.Broker[rig.Event]
}

var _ rig.Observer = (*EventPublisher)(nil)

func NewEventPublisher(broker *pubsub.Broker[rig.Event]) *EventPublisher {
	return &EventPublisher{broker: broker}
}

// OnEvent implements rig.Observer.
func (p *EventPublisher) OnEvent(_ context.Context, ev rig.Event) {
	if t, ok := EventType(ev.Kind); ok {
		p.broker.Publish(t, ev)
	}
}

// EventType maps a build event kind to its pubsub event type.
func EventType(kind rig.EventKind) (pubsub.EventType, bool) {
	switch kind {
	case rig.EventPhaseStarted:
		return pubsub.PhaseStartedEvent, true
	case rig.EventPhaseFinished:
		return pubsub.PhaseFinishedEvent, true
	case rig.EventBuilt:
		return pubsub.ComponentBuiltEvent, true
	case rig.EventSkipped:
		return pubsub.FragmentSkippedEvent, true
	case rig.EventFailed:
		return pubsub.FragmentFailedEvent, true
	}
	return "", false
}
