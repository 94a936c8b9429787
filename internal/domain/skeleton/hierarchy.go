package skeleton

import (
	"cmp"
	"maps"
	"slices"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// DefaultTypoDenyList holds name fragments that usually mean a joint was
// pasted or duplicated by hand.
var DefaultTypoDenyList = []string{"pasted__", "__", "copy", "Copy", " ", "|"}

// Options controls parsing and validation.
type Options struct {
	CheckForErrors  bool
	TypoDenyList    []string
	MirrorTolerance float64
	MirrorPrecision int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		TypoDenyList:    slices.Clone(DefaultTypoDenyList),
		MirrorTolerance: 2,
		MirrorPrecision: 3,
	}
}

// ChainKey identifies a chain.
type ChainKey struct {
	Side   scene.Side
	Region string
}

func (k ChainKey) String() string {
	return string(k.Side) + "/" + k.Region
}

type chainPos struct {
	key   ChainKey
	index int
}

// Hierarchy is the parsed view of a skeleton.
type Hierarchy struct {
	sc     *scene.Scene
	root   scene.NodeID
	nodes  []scene.NodeID
	names  map[string]scene.NodeID
	chains map[ChainKey][]scene.NodeID
	twists map[ChainKey][]scene.NodeID
	nulls  []scene.NodeID
	member map[scene.NodeID]chainPos
	report *Report
	errs   []error

	open   map[ChainKey]bool
	starts map[ChainKey]scene.NodeID
	ends   map[ChainKey]scene.NodeID
}

// Parse builds a Hierarchy from root and every joint below it.
func Parse(sc *scene.Scene, root scene.NodeID, opts Options) (*Hierarchy, error) {
	if sc == nil || !sc.Exists(root) {
		return nil, ErrRootNotFound
	}
	h := &Hierarchy{
		sc:     sc,
		root:   root,
		names:  make(map[string]scene.NodeID),
		chains: make(map[ChainKey][]scene.NodeID),
		twists: make(map[ChainKey][]scene.NodeID),
		member: make(map[scene.NodeID]chainPos),
		open:   make(map[ChainKey]bool),
		starts: make(map[ChainKey]scene.NodeID),
		ends:   make(map[ChainKey]scene.NodeID),
	}
	if opts.CheckForErrors {
		h.report = &Report{}
	}

	for _, id := range sc.Descendants(root) {
		n := sc.Node(id)
		if id != root && !n.IsJoint() {
			continue
		}
		if err := h.visit(n, opts); err != nil {
			log.Warn(log.CatSkeleton, "parse aborted", "node", n.Name(), "error", err)
			h.index()
			return h, err
		}
	}

	if opts.CheckForErrors {
		for _, key := range h.ChainKeys() {
			if _, ok := h.ends[key]; !ok {
				h.report.Add(CategoryBookend, "chain "+key.String()+" has no end", sc.Name(h.starts[key]))
			}
		}
	}
	h.index()
	if opts.CheckForErrors {
		h.validate(opts)
	}

	log.Debug(log.CatSkeleton, "parsed hierarchy",
		"root", sc.Name(root), "nodes", len(h.nodes), "chains", len(h.chains), "violations", h.report.Len())
	return h, nil
}

func (h *Hierarchy) visit(n *scene.Node, opts Options) error {
	id := n.ID()
	if _, dup := h.names[n.Name()]; dup {
		err := &StructuralError{Category: CategoryName, Node: n.Name(), Err: ErrDuplicateName}
		if !opts.CheckForErrors {
			return err
		}
		h.record(err)
	} else {
		h.names[n.Name()] = id
	}
	h.nodes = append(h.nodes, id)

	m := n.Markup()
	side := m.EffectiveSide()
	if m.Twist {
		key := ChainKey{Side: side, Region: m.EffectiveRegion()}
		h.twists[key] = append(h.twists[key], id)
	}
	if m.Null {
		h.nulls = append(h.nulls, id)
	}
	if m.Twist || m.Null {
		return nil
	}

	if m.Start != "" {
		key := ChainKey{Side: side, Region: m.Start}
		if prev, seen := h.starts[key]; seen && opts.CheckForErrors {
			h.report.Add(CategoryDuplicate, "second start for "+key.String(), h.sc.Name(prev), n.Name())
		}
		h.starts[key] = id
		h.chains[key] = []scene.NodeID{id}
		h.open[key] = true
	}

	if m.Start == "" && m.End == "" && m.Region != "" {
		key := ChainKey{Side: side, Region: m.Region}
		if h.open[key] {
			h.chains[key] = append(h.chains[key], id)
		}
	}

	if m.End != "" {
		key := ChainKey{Side: side, Region: m.End}
		if prev, seen := h.ends[key]; seen {
			if opts.CheckForErrors {
				h.report.Add(CategoryDuplicate, "second end for "+key.String(), h.sc.Name(prev), n.Name())
			}
			return nil
		}
		chain, started := h.chains[key]
		if !started {
			err := &StructuralError{Category: CategoryBookend, Node: n.Name(), Err: ErrEndBeforeStart}
			if !opts.CheckForErrors {
				return err
			}
			h.record(err)
			h.ends[key] = id
			return nil
		}
		if chain[len(chain)-1] != id {
			h.chains[key] = append(chain, id)
		}
		h.open[key] = false
		h.ends[key] = id
	}
	return nil
}

func (h *Hierarchy) record(err *StructuralError) {
	h.errs = append(h.errs, err)
	h.report.Add(err.Category, err.Error(), err.Node)
}

func (h *Hierarchy) index() {
	for _, key := range h.ChainKeys() {
		for i, id := range h.chains[key] {
			if _, ok := h.member[id]; !ok {
				h.member[id] = chainPos{key: key, index: i}
			}
		}
	}
}

// Scene returns the scene the hierarchy was parsed from.
func (h *Hierarchy) Scene() *scene.Scene { return h.sc }

// Root returns the root node.
func (h *Hierarchy) Root() scene.NodeID { return h.root }

// Nodes returns every parsed node in traversal order.
func (h *Hierarchy) Nodes() []scene.NodeID { return slices.Clone(h.nodes) }

// NameLookup returns a copy of the name to node map.
func (h *Hierarchy) NameLookup() map[string]scene.NodeID { return maps.Clone(h.names) }

// Lookup finds a node by exact name.
func (h *Hierarchy) Lookup(name string) (scene.NodeID, bool) {
	id, ok := h.names[name]
	return id, ok
}

// Contains reports whether id was parsed into this hierarchy.
func (h *Hierarchy) Contains(id scene.NodeID) bool {
	return slices.Contains(h.nodes, id)
}

// ChainKeys returns every chain key sorted by side then region.
func (h *Hierarchy) ChainKeys() []ChainKey {
	return sortedKeys(h.chains)
}

// FullChain returns the chain for (side, region), or nil.
func (h *Hierarchy) FullChain(side scene.Side, region string) []scene.NodeID {
	return slices.Clone(h.chains[ChainKey{Side: side, Region: region}])
}

// ChainStart returns the first node of the chain, or NoNode.
func (h *Hierarchy) ChainStart(side scene.Side, region string) scene.NodeID {
	chain := h.chains[ChainKey{Side: side, Region: region}]
	if len(chain) == 0 {
		return scene.NoNode
	}
	return chain[0]
}

// ChainEnd returns the last node of the chain, or NoNode.
func (h *Hierarchy) ChainEnd(side scene.Side, region string) scene.NodeID {
	chain := h.chains[ChainKey{Side: side, Region: region}]
	if len(chain) == 0 {
		return scene.NoNode
	}
	return chain[len(chain)-1]
}

// ChainOf returns the chain containing id and its index within it.
func (h *Hierarchy) ChainOf(id scene.NodeID) (ChainKey, int, bool) {
	pos, ok := h.member[id]
	return pos.key, pos.index, ok
}

// TwistKeys returns the keys of every twist set, sorted.
func (h *Hierarchy) TwistKeys() []ChainKey {
	return sortedKeys(h.twists)
}

// TwistSet returns the twist joints tagged with (side, region) in traversal order.
func (h *Hierarchy) TwistSet(side scene.Side, region string) []scene.NodeID {
	return slices.Clone(h.twists[ChainKey{Side: side, Region: region}])
}

// Nulls returns the null joints in traversal order.
func (h *Hierarchy) Nulls() []scene.NodeID { return slices.Clone(h.nulls) }

// Report returns the validation report. It is nil unless CheckForErrors was set.
func (h *Hierarchy) Report() *Report { return h.report }

// Errors returns the structural errors recorded while parsing with CheckForErrors.
func (h *Hierarchy) Errors() []error { return slices.Clone(h.errs) }

func sortedKeys(m map[ChainKey][]scene.NodeID) []ChainKey {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, func(a, b ChainKey) int {
		return cmp.Or(cmp.Compare(a.Side, b.Side), cmp.Compare(a.Region, b.Region))
	})
	return keys
}
