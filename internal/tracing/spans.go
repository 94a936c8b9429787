package tracing

// Span attribute keys.
const (
	AttrRigName         = "rig.name"
	AttrRigVersion      = "rig.version"
	AttrRigFile         = "rig.file"
	AttrBuildPhase      = "build.phase"
	AttrBuildBuilt      = "build.built"
	AttrBuildSkipped    = "build.skipped"
	AttrBuildFailed     = "build.failed"
	AttrBuildDerived    = "build.derived"
	AttrFragmentIndex   = "fragment.index"
	AttrComponentType   = "component.type"
	AttrComponentSide   = "component.side"
	AttrComponentRegion = "component.region"
	AttrSkeletonPath    = "skeleton.path"
	AttrErrorMessage    = "error.message"
)

// Span names.
const (
	SpanBuild        = "rig.build"
	SpanReload       = "rig.reload"
	SpanSave         = "rig.save"
	SpanLoadSkeleton = "skeleton.load"
	SpanPhasePrefix  = "build.phase."
)

// Span event names.
const (
	EventComponentBuilt  = "component.built"
	EventFragmentSkipped = "fragment.skipped"
	EventFragmentFailed  = "fragment.failed"
)
