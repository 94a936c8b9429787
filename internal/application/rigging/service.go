package rigging

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ncomes/MechanicalArt-sub001/internal/cachemanager"
	"github.com/ncomes/MechanicalArt-sub001/internal/config"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/components"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/history"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/flags"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/skeletonfile"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/yamlstore"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
	"github.com/ncomes/MechanicalArt-sub001/internal/pubsub"
	"github.com/ncomes/MechanicalArt-sub001/internal/tracing"
)

var (
	// ErrBuildFailed is returned by Build when fragments failed and the
	// strict-build flag is on. The session is still returned.
	ErrBuildFailed = errors.New("rig build had failures")
	ErrNoHistory   = errors.New("build history is disabled")
)

// Options wires a RigService. Only Config is required; nil Flags are read
// from Config.Flags.
type Options struct {
	Config   config.Config
	Flags    *flags.Registry
	Registry *rig.Registry
	History  history.Repository
	Tracer   trace.Tracer
	Events   *pubsub.Broker[rig.Event]
}

// RigService runs rig operations against files on disk.
type RigService struct {
	cfg       config.Config
	flags     *flags.Registry
	registry  *rig.Registry
	history   history.Repository
	tracer    trace.Tracer
	events    *pubsub.Broker[rig.Event]
	skeletons *cachemanager.ReadThroughCache[string, *skeletonfile.File, string]
}

// NewRigService creates the service. A nil Registry means the built-in
// component types.
func NewRigService(opts Options) *RigService {
	reg := opts.Registry
	if reg == nil {
		reg = components.NewRegistry()
	}
	fl := opts.Flags
	if fl == nil {
		fl = flags.New(opts.Config.Flags)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	ttl, cleanup := opts.Config.Cache.TTL, opts.Config.Cache.CleanupInterval
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	if cleanup <= 0 {
		cleanup = cachemanager.DefaultCleanupInterval
	}

	s := &RigService{
		cfg:      opts.Config,
		flags:    fl,
		registry: reg,
		history:  opts.History,
		tracer:   tracer,
		events:   opts.Events,
	}
	s.skeletons = cachemanager.NewReadThroughCache[string, *skeletonfile.File, string](
		cachemanager.NewInMemoryCacheManager[string, *skeletonfile.File]("skeleton", ttl, cleanup),
		s.readSkeleton,
		!fl.Enabled(flags.FlagSkeletonCache),
	)
	return s
}

func (s *RigService) Registry() *rig.Registry { return s.registry }

func (s *RigService) readSkeleton(ctx context.Context, path string) (*skeletonfile.File, error) {
	_, span := s.tracer.Start(ctx, tracing.SpanLoadSkeleton,
		trace.WithAttributes(attribute.String(tracing.AttrSkeletonPath, path)))
	defer span.End()

	f, err := skeletonfile.Read(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	log.Debug(log.CatSkeleton, "read skeleton file", "path", path, "joints", len(f.Joints))
	return f, nil
}

// LoadSkeleton returns the parsed skeleton file at path, from the cache
// when it was read before.
func (s *RigService) LoadSkeleton(ctx context.Context, path string) (*skeletonfile.File, error) {
	key := filepath.Clean(path)
	return s.skeletons.GetWithRefresh(ctx, key, key, s.cfg.Cache.TTL)
}

// Invalidate drops cached skeleton files so the next build rereads them.
func (s *RigService) Invalidate(ctx context.Context, paths ...string) {
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = filepath.Clean(p)
	}
	_ = s.skeletons.Invalidate(ctx, keys...)
}

// ValidateSkeleton imports the skeleton file into a scratch scene and runs
// every validation check on it. Structural errors are returned alongside
// the hierarchy, whose report holds the naming findings.
func (s *RigService) ValidateSkeleton(ctx context.Context, path string) (*skeleton.Hierarchy, error) {
	f, err := s.LoadSkeleton(ctx, path)
	if err != nil {
		return nil, err
	}
	sc := scene.New()
	root, err := skeletonfile.Import(sc, f, "")
	if err != nil {
		return nil, err
	}
	h, err := skeleton.Parse(sc, root, s.cfg.Validation.SkeletonOptions(true))
	if err != nil {
		return h, err
	}
	log.Info(log.CatSkeleton, "validated skeleton", "path", path, "violations", h.Report().Len(), "errors", len(h.Errors()))
	return h, nil
}

// BuildRequest names the inputs of a build.
type BuildRequest struct {
	Skeleton  string
	Rig       string
	Namespace string // overrides build.namespace
}

// Session is a rig built from files, kept so it can be saved or checked.
type Session struct {
	Rig      *rig.Rig
	Skeleton string
	RigPath  string
	Result   rig.BuildResult
	Elapsed  time.Duration
}

// Build imports the skeleton into a new scene and builds the rig document
// onto it.
func (s *RigService) Build(ctx context.Context, req BuildRequest) (*Session, error) {
	namespace := req.Namespace
	if namespace == "" {
		namespace = s.cfg.Build.Namespace
	}

	doc, err := yamlstore.Load(req.Rig)
	if err != nil {
		return nil, fmt.Errorf("loading rig document: %w", err)
	}

	source := skeletonfile.NewSource(req.Skeleton, namespace, skeletonfile.WithReader(s.LoadSkeleton))
	sc := scene.New()
	root, err := source.ImportSkeleton(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("importing skeleton: %w", err)
	}

	observer := tracing.NewBuildObserver(s.tracer)
	defer observer.Close()
	r, err := rig.New(sc, root, s.registry,
		rig.WithName(s.rigName()),
		rig.WithObserver(rig.Observers(observer, s.publisher())),
		rig.WithSource(source),
		rig.WithBaker(scene.KeyCopyBaker{}),
		rig.WithParseOptions(s.cfg.Validation.SkeletonOptions(false)),
		rig.WithAutoDerive(s.cfg.Build.AutoDerive),
	)
	if err != nil {
		return nil, err
	}
	r.SetFile(filepath.Base(req.Rig))

	ctx, span := tracing.StartBuild(ctx, s.tracer, tracing.SpanBuild, r.Name())
	span.SetAttributes(
		attribute.String(tracing.AttrRigFile, req.Rig),
		attribute.String(tracing.AttrSkeletonPath, req.Skeleton),
		attribute.Float64(tracing.AttrRigVersion, doc.Version),
	)
	start := time.Now()
	res, err := r.BuildSerializedRig(ctx, doc)
	tracing.EndBuild(span, res, err)
	if err != nil {
		return nil, fmt.Errorf("building rig: %w", err)
	}
	// BuildSerializedRig keeps the document it ran, so a later reload or
	// save starts from what was on disk.
	r.SetDocument(doc)

	if s.cfg.Build.FinishRig {
		if err := r.FinishRig(); err != nil {
			return nil, fmt.Errorf("finishing rig: %w", err)
		}
	}

	sess := &Session{Rig: r, Skeleton: req.Skeleton, RigPath: req.Rig, Result: res, Elapsed: time.Since(start)}
	log.Debug(log.CatBuild, "build session ready", "rig", r.Name(), "file", req.Rig,
		"built", len(res.Built), "skipped", len(res.Skipped), "failed", len(res.Failed), "derived", res.Derived,
		"elapsed", sess.Elapsed, "trace", tracing.TraceID(ctx))

	s.record(history.NewRecord(r.Name(), history.ActionBuild, r.Version(), s.marshal(doc)).
		WithFile(req.Rig).
		WithCounts(len(res.Built), len(res.Skipped), len(res.Failed)))

	if !res.OK() && s.flags.Enabled(flags.FlagStrictBuild) {
		return sess, fmt.Errorf("%w: %d of %d fragments failed", ErrBuildFailed, len(res.Failed), len(doc.Components))
	}
	return sess, nil
}

// Save serializes the session's rig with a version bump and writes it to
// out, or back to the file it was built from when out is empty.
func (s *RigService) Save(ctx context.Context, sess *Session, out string) (*rig.Document, error) {
	if out == "" {
		out = sess.RigPath
	}
	_, span := s.tracer.Start(ctx, tracing.SpanSave, trace.WithAttributes(
		attribute.String(tracing.AttrRigName, sess.Rig.Name()),
		attribute.String(tracing.AttrRigFile, out),
	))
	defer span.End()

	doc, err := sess.Rig.SerializeRig(true)
	if err == nil {
		err = yamlstore.Save(out, doc)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("saving rig: %w", err)
	}
	sess.Rig.SetFile(filepath.Base(out))
	span.SetAttributes(attribute.Float64(tracing.AttrRigVersion, doc.Version))
	span.SetStatus(codes.Ok, "")

	s.record(history.NewRecord(sess.Rig.Name(), history.ActionSave, doc.Version, s.marshal(doc)).
		WithFile(out).
		WithCounts(len(doc.Components), 0, 0))
	return doc, nil
}

// Check reports the components built by an older factory version.
func (s *RigService) Check(_ context.Context, sess *Session) []rig.StaleComponent {
	stale := sess.Rig.ValidateRig()
	log.Info(log.CatRig, "checked rig", "rig", sess.Rig.Name(), "stale", len(stale))
	s.record(history.NewRecord(sess.Rig.Name(), history.ActionCheck, sess.Rig.Version(), s.marshal(sess.Rig.Document())).
		WithFile(sess.RigPath).
		WithCounts(0, 0, len(stale)))
	return stale
}

// Reload rebuilds the session's rig in place from its document.
func (s *RigService) Reload(ctx context.Context, sess *Session, force, full bool) (rig.BuildResult, error) {
	if full {
		s.Invalidate(ctx, sess.Skeleton)
	}
	observer := tracing.NewBuildObserver(s.tracer)
	defer observer.Close()
	sess.Rig.SetObserver(rig.Observers(observer, s.publisher()))

	ctx, span := tracing.StartBuild(ctx, s.tracer, tracing.SpanReload, sess.Rig.Name())
	res, err := sess.Rig.Reload(ctx, force, full)
	tracing.EndBuild(span, res, err)
	if err != nil {
		return res, fmt.Errorf("reloading rig: %w", err)
	}
	sess.Result = res
	s.record(history.NewRecord(sess.Rig.Name(), history.ActionReload, sess.Rig.Version(), s.marshal(sess.Rig.Document())).
		WithFile(sess.RigPath).
		WithCounts(len(res.Built), len(res.Skipped), len(res.Failed)))
	return res, nil
}

// History lists recorded runs, newest first. An empty rigName lists every
// rig.
func (s *RigService) History(rigName string, limit int) ([]*history.Record, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.List(rigName, limit)
}

// Restore writes the document of a history record to out.
func (s *RigService) Restore(id, out string) (*rig.Document, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	rec, err := s.history.Get(id)
	if err != nil {
		return nil, err
	}
	doc, err := yamlstore.Unmarshal([]byte(rec.Document()))
	if err != nil {
		return nil, fmt.Errorf("decoding recorded document: %w", err)
	}
	if err := yamlstore.Save(out, doc); err != nil {
		return nil, err
	}
	log.Info(log.CatStore, "restored rig document", "record", id, "out", out)
	return doc, nil
}

func (s *RigService) rigName() string {
	if s.cfg.Build.Name != "" {
		return s.cfg.Build.Name
	}
	return "rig"
}

func (s *RigService) publisher() rig.Observer {
	if s.events == nil {
		return nil
	}
	return NewEventPublisher(s.events)
}

func (s *RigService) marshal(doc *rig.Document) string {
	if doc == nil {
		return ""
	}
	data, err := yamlstore.Marshal(doc)
	if err != nil {
		log.ErrorErr(log.CatStore, "serializing document for history", err)
		return ""
	}
	return string(data)
}

// record stores rec when history is on. History failures are logged, never
// returned: a build is not undone because its record could not be written.
func (s *RigService) record(rec *history.Record) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(rec); err != nil {
		log.ErrorErr(log.CatDB, "recording build", err, "rig", rec.RigName(), "action", string(rec.Action()))
		return
	}
	if s.flags.Enabled(flags.FlagHistoryPrune) && s.cfg.History.Keep > 0 {
		n, err := s.history.Prune(rec.RigName(), s.cfg.History.Keep)
		if err != nil {
			log.ErrorErr(log.CatDB, "pruning history", err, "rig", rec.RigName())
			return
		}
		if n > 0 {
			log.Debug(log.CatDB, "pruned history", "rig", rec.RigName(), "removed", n)
		}
	}
}
