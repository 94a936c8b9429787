package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
)

// BuildObserver turns rig build events into spans. Each phase gets a child
// span of the span in the build context; fragment outcomes become events on
// the phase span.
type BuildObserver struct {
	tracer trace.Tracer

	mu     sync.Mutex
	phases map[rig.Phase]trace.Span
}

var _ rig.Observer = (*BuildObserver)(nil)

// NewBuildObserver returns an observer creating spans with tracer. A nil
// tracer yields an observer that does nothing.
func NewBuildObserver(tracer trace.Tracer) *BuildObserver {
	return &BuildObserver{tracer: tracer, phases: make(map[rig.Phase]trace.Span)}
}

// OnEvent implements rig.Observer.
func (o *BuildObserver) OnEvent(ctx context.Context, ev rig.Event) {
	if o.tracer == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	switch ev.Kind {
	case rig.EventPhaseStarted:
		_, span := o.tracer.Start(ctx, SpanPhasePrefix+string(ev.Phase),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attribute.String(AttrBuildPhase, string(ev.Phase))),
		)
		o.phases[ev.Phase] = span
	case rig.EventPhaseFinished:
		if span, ok := o.phases[ev.Phase]; ok {
			span.SetStatus(codes.Ok, "")
			span.End()
			delete(o.phases, ev.Phase)
		}
	case rig.EventBuilt:
		o.target(ctx, ev.Phase).AddEvent(EventComponentBuilt, trace.WithAttributes(fragmentAttrs(ev)...))
	case rig.EventSkipped:
		o.target(ctx, ev.Phase).AddEvent(EventFragmentSkipped, trace.WithAttributes(fragmentAttrs(ev)...))
	case rig.EventFailed:
		span := o.target(ctx, ev.Phase)
		attrs := fragmentAttrs(ev)
		if ev.Err != nil {
			attrs = append(attrs, attribute.String(AttrErrorMessage, ev.Err.Error()))
			span.RecordError(ev.Err)
		}
		span.AddEvent(EventFragmentFailed, trace.WithAttributes(attrs...))
	}
}

// Close ends phase spans left open by an aborted build.
func (o *BuildObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for phase, span := range o.phases {
		span.SetStatus(codes.Error, "build aborted")
		span.End()
		delete(o.phases, phase)
	}
}

func (o *BuildObserver) target(ctx context.Context, phase rig.Phase) trace.Span {
	if span, ok := o.phases[phase]; ok {
		return span
	}
	return trace.SpanFromContext(ctx)
}

func fragmentAttrs(ev rig.Event) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrFragmentIndex, ev.Index),
		attribute.String(AttrComponentType, ev.Key.Type),
		attribute.String(AttrComponentSide, string(ev.Key.Side)),
		attribute.String(AttrComponentRegion, ev.Key.Region),
	}
}

// StartBuild opens the span covering one build of rigName.
func StartBuild(ctx context.Context, tracer trace.Tracer, name, rigName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String(AttrRigName, rigName)),
	)
}

// EndBuild records the outcome of a build on span and ends it.
func EndBuild(span trace.Span, res rig.BuildResult, err error) {
	span.SetAttributes(
		attribute.Int(AttrBuildBuilt, len(res.Built)),
		attribute.Int(AttrBuildSkipped, len(res.Skipped)),
		attribute.Int(AttrBuildFailed, len(res.Failed)),
		attribute.Int(AttrBuildDerived, res.Derived),
	)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !res.OK():
		span.SetStatus(codes.Error, "fragments failed")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
