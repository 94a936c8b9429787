package rigging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/application/rigging"
	"github.com/ncomes/MechanicalArt-sub001/internal/config"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/components"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/history"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/flags"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/skeletonfile"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/sqlite"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/yamlstore"
	"github.com/ncomes/MechanicalArt-sub001/internal/pubsub"
	"github.com/ncomes/MechanicalArt-sub001/internal/testutil"
)

type fixture struct {
	dir      string
	skeleton string
	rig      string
	doc      *rig.Document
}

func heroDocument() *rig.Document {
	spineTip := []rig.Identifier{rig.FlagID(scene.SideCenter, "spine", rig.LastIndex)}
	return &rig.Document{Version: 1, Components: []rig.Fragment{
		{Type: components.TypeWorld, Side: scene.SideCenter, Region: "world"},
		{Type: components.TypeFK, Side: scene.SideCenter, Region: "spine"},
		{
			Type: components.TypeFK, Side: scene.SideLeft, Region: "arm",
			Attachments: rig.Attachments{Point: spineTip, Orient: spineTip},
		},
	}}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	sc, root, _ := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)

	fx := fixture{
		dir:      dir,
		skeleton: filepath.Join(dir, "hero.skl"),
		rig:      filepath.Join(dir, "hero.rig"),
		doc:      heroDocument(),
	}
	require.NoError(t, skeletonfile.Write(fx.skeleton, f))
	require.NoError(t, yamlstore.Save(fx.rig, fx.doc))
	return fx
}

func (fx fixture) request() rigging.BuildRequest {
	return rigging.BuildRequest{Skeleton: fx.skeleton, Rig: fx.rig}
}

func newHistory(t *testing.T) history.Repository {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.HistoryRepository()
}

func newService(t *testing.T, mutate func(*rigging.Options)) (*rigging.RigService, history.Repository) {
	t.Helper()
	repo := newHistory(t)
	opts := rigging.Options{Config: config.Defaults(), History: repo}
	if mutate != nil {
		mutate(&opts)
	}
	return rigging.NewRigService(opts), opts.History
}

func TestRigService_Build(t *testing.T) {
	fx := newFixture(t)
	svc, repo := newService(t, nil)

	sess, err := svc.Build(context.Background(), fx.request())
	require.NoError(t, err)
	require.True(t, sess.Result.OK(), "failures: %v", sess.Result.Failed)
	require.Len(t, sess.Result.Built, 3)
	require.Equal(t, 2, sess.Result.Derived)
	require.Equal(t, "hero.rig", sess.Rig.File())
	require.Equal(t, fx.doc, sess.Rig.Document())

	arm := sess.Rig.Find(components.TypeFK, scene.SideLeft, "arm")
	require.NotNil(t, arm)
	spine := sess.Rig.Find(components.TypeFK, scene.SideCenter, "spine").Flags()
	require.Equal(t, spine[len(spine)-1:], arm.Attachments(rig.ChannelPoint))

	records, err := repo.List("rig", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, history.ActionBuild, records[0].Action())
	require.Equal(t, fx.rig, records[0].RigFile())
	require.Equal(t, 3, records[0].Built())
	require.True(t, records[0].OK())
}

func TestRigService_BuildNamespace(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newService(t, nil)

	req := fx.request()
	req.Namespace = "hero"
	sess, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "hero", sess.Rig.Namespace())
	require.True(t, sess.Result.OK())
}

func TestRigService_BuildFailures(t *testing.T) {
	fx := newFixture(t)
	doc := heroDocument()
	doc.Components = append(doc.Components, rig.Fragment{Type: "bogus", Side: scene.SideLeft, Region: "wing"})
	require.NoError(t, yamlstore.Save(fx.rig, doc))

	lenient, repo := newService(t, nil)
	sess, err := lenient.Build(context.Background(), fx.request())
	require.NoError(t, err)
	require.Len(t, sess.Result.Failed, 1)
	require.ErrorIs(t, &sess.Result.Failed[0], rig.ErrUnknownType)

	latest, err := repo.Latest("rig")
	require.NoError(t, err)
	require.Equal(t, 1, latest.Failed())

	strict, _ := newService(t, func(o *rigging.Options) {
		o.Flags = flags.New(map[string]bool{flags.FlagStrictBuild: true})
	})
	sess, err = strict.Build(context.Background(), fx.request())
	require.ErrorIs(t, err, rigging.ErrBuildFailed)
	require.NotNil(t, sess)
}

func TestRigService_BuildErrors(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Build(ctx, rigging.BuildRequest{Skeleton: fx.skeleton, Rig: filepath.Join(fx.dir, "missing.rig")})
	require.Error(t, err)

	_, err = svc.Build(ctx, rigging.BuildRequest{Skeleton: filepath.Join(fx.dir, "missing.skl"), Rig: fx.rig})
	require.Error(t, err)

	_, err = svc.Build(ctx, rigging.BuildRequest{Skeleton: fx.skeleton, Rig: fx.skeleton})
	require.ErrorIs(t, err, yamlstore.ErrExtension)
}

func TestRigService_PublishesEvents(t *testing.T) {
	fx := newFixture(t)
	broker := pubsub.NewBrokerWithBuffer[rig.Event](128)
	defer broker.Close()
	svc, _ := newService(t, func(o *rigging.Options) { o.Events = broker })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	_, err := svc.Build(ctx, fx.request())
	require.NoError(t, err)

	counts := map[pubsub.EventType]int{}
	for done := false; !done; {
		select {
		case ev := <-ch:
			counts[ev.Type]++
		default:
			done = true
		}
	}
	require.Equal(t, 3, counts[pubsub.PhaseStartedEvent])
	require.Equal(t, 3, counts[pubsub.PhaseFinishedEvent])
	require.Equal(t, 5, counts[pubsub.ComponentBuiltEvent])
	require.Zero(t, counts[pubsub.FragmentFailedEvent])
}

func TestRigService_Save(t *testing.T) {
	fx := newFixture(t)
	svc, repo := newService(t, nil)
	ctx := context.Background()

	sess, err := svc.Build(ctx, fx.request())
	require.NoError(t, err)

	out := filepath.Join(fx.dir, "hero_v2.rig")
	doc, err := svc.Save(ctx, sess, out)
	require.NoError(t, err)
	require.Equal(t, 2.0, doc.Version)
	require.Equal(t, "hero_v2.rig", sess.Rig.File())

	loaded, err := yamlstore.Load(out)
	require.NoError(t, err)
	require.Equal(t, doc, loaded)
	require.Len(t, loaded.Components, 3)

	latest, err := repo.Latest("rig")
	require.NoError(t, err)
	require.Equal(t, history.ActionSave, latest.Action())
	require.Equal(t, 2.0, latest.Version())

	_, err = svc.Save(ctx, sess, filepath.Join(fx.dir, "hero.yaml"))
	require.ErrorIs(t, err, yamlstore.ErrExtension)
}

func TestRigService_SaveInPlace(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newService(t, nil)
	ctx := context.Background()

	sess, err := svc.Build(ctx, fx.request())
	require.NoError(t, err)
	_, err = svc.Save(ctx, sess, "")
	require.NoError(t, err)

	loaded, err := yamlstore.Load(fx.rig)
	require.NoError(t, err)
	require.Equal(t, 2.0, loaded.Version)
}

func TestRigService_Check(t *testing.T) {
	fx := newFixture(t)
	svc, repo := newService(t, nil)
	ctx := context.Background()

	sess, err := svc.Build(ctx, fx.request())
	require.NoError(t, err)
	require.Empty(t, svc.Check(ctx, sess))

	updated := rig.NewRegistry()
	for _, def := range components.NewRegistry().Definitions() {
		if def.Type == components.TypeFK {
			def.Version++
		}
		require.NoError(t, updated.Register(def))
	}
	sess.Rig.SetRegistry(updated)

	stale := svc.Check(ctx, sess)
	require.Len(t, stale, 2)
	for _, s := range stale {
		assert.Equal(t, components.TypeFK, s.Key.Type)
		assert.Equal(t, s.Built+1, s.Current)
	}

	latest, err := repo.Latest("rig")
	require.NoError(t, err)
	require.Equal(t, history.ActionCheck, latest.Action())
	require.Equal(t, 2, latest.Failed())
}

func TestRigService_Reload(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newService(t, nil)
	ctx := context.Background()

	sess, err := svc.Build(ctx, fx.request())
	require.NoError(t, err)

	res, err := svc.Reload(ctx, sess, false, false)
	require.NoError(t, err)
	require.Empty(t, res.Built, "nothing stale, nothing rebuilt")

	res, err = svc.Reload(ctx, sess, true, true)
	require.NoError(t, err)
	require.Len(t, res.Built, 3)
	require.Len(t, sess.Rig.Components(), 5)
}

func TestRigService_SkeletonCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	cached, _ := newService(t, nil)
	a, err := cached.LoadSkeleton(ctx, fx.skeleton)
	require.NoError(t, err)
	b, err := cached.LoadSkeleton(ctx, filepath.Join(fx.dir, ".", "hero.skl"))
	require.NoError(t, err)
	require.Same(t, a, b)

	cached.Invalidate(ctx, fx.skeleton)
	c, err := cached.LoadSkeleton(ctx, fx.skeleton)
	require.NoError(t, err)
	require.NotSame(t, a, c)
	require.Equal(t, a, c)

	uncached, _ := newService(t, func(o *rigging.Options) {
		o.Flags = flags.New(map[string]bool{flags.FlagSkeletonCache: false})
	})
	a, err = uncached.LoadSkeleton(ctx, fx.skeleton)
	require.NoError(t, err)
	b, err = uncached.LoadSkeleton(ctx, fx.skeleton)
	require.NoError(t, err)
	require.NotSame(t, a, b)
}

func TestRigService_ValidateSkeleton(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newService(t, nil)

	h, err := svc.ValidateSkeleton(context.Background(), fx.skeleton)
	require.NoError(t, err)
	require.Zero(t, h.Report().Len(), "violations: %v", h.Report().All())
	require.Len(t, h.TwistKeys(), 2)
}

func TestRigService_HistoryAndRestore(t *testing.T) {
	fx := newFixture(t)
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Build(ctx, fx.request())
	require.NoError(t, err)

	records, err := svc.History("", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	out := filepath.Join(fx.dir, "restored.rig")
	doc, err := svc.Restore(records[0].ID(), out)
	require.NoError(t, err)
	require.Equal(t, fx.doc, doc)

	_, err = os.Stat(out)
	require.NoError(t, err)

	_, err = svc.Restore("missing", out)
	var notFound *history.RecordNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRigService_HistoryDisabled(t *testing.T) {
	fx := newFixture(t)
	svc := rigging.NewRigService(rigging.Options{Config: config.Defaults()})

	_, err := svc.Build(context.Background(), fx.request())
	require.NoError(t, err)

	_, err = svc.History("", 0)
	require.ErrorIs(t, err, rigging.ErrNoHistory)
	_, err = svc.Restore("id", filepath.Join(fx.dir, "x.rig"))
	require.ErrorIs(t, err, rigging.ErrNoHistory)
}

func TestRigService_HistoryPrune(t *testing.T) {
	fx := newFixture(t)
	cfg := config.Defaults()
	cfg.History.Keep = 2
	svc, repo := newService(t, func(o *rigging.Options) { o.Config = cfg })

	for range 4 {
		_, err := svc.Build(context.Background(), fx.request())
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	records, err := repo.List("rig", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestRigService_Types(t *testing.T) {
	svc, _ := newService(t, nil)
	types := svc.Registry().Types()
	require.Contains(t, types, components.TypeFK)
	require.Contains(t, types, components.TypeTwist)
}
