package skeleton

import (
	"fmt"
	"strings"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

const scaleEpsilon = 1e-6

var mirrorPairs = [][2]scene.Side{
	{scene.SideLeft, scene.SideRight},
	{scene.SideFront, scene.SideBack},
	{scene.SideTop, scene.SideBottom},
}

func (h *Hierarchy) validate(opts Options) {
	inTree := make(map[scene.NodeID]bool, len(h.nodes))
	for _, id := range h.nodes {
		inTree[id] = true
	}

	for _, id := range h.nodes {
		n := h.sc.Node(id)
		h.checkTypo(n, opts.TypoDenyList)

		if !n.Scale().ApproxEqual(scene.One, scaleEpsilon) {
			h.report.Add(CategoryScale, fmt.Sprintf("scale is %v", n.Scale()), n.Name())
		}

		m := n.Markup()
		if !m.Animated {
			continue
		}
		if m.Twist || m.Null {
			h.report.Add(CategoryAnimated, "twist and null joints cannot be animated", n.Name())
		}
		if p := n.Parent(); inTree[p] && !h.sc.Node(p).Markup().Animated {
			h.report.Add(CategoryAnimated, "animated joint under non-animated parent "+h.sc.Name(p), n.Name())
		}
	}

	for _, key := range h.ChainKeys() {
		h.checkParents(key)
	}
	for _, key := range h.ChainKeys() {
		h.checkMirror(key, opts)
	}
}

func (h *Hierarchy) checkTypo(n *scene.Node, deny []string) {
	base := n.BaseName()
	for _, frag := range deny {
		if frag != "" && strings.Contains(base, frag) {
			h.report.Add(CategoryTypo, fmt.Sprintf("name contains %q", frag), n.Name())
			return
		}
	}
}

// checkParents flags chains whose members neither share a single parent nor
// form a strict parent chain.
func (h *Hierarchy) checkParents(key ChainKey) {
	chain := h.chains[key]
	if len(chain) < 2 {
		return
	}
	shared, strict := true, true
	first := h.sc.Node(chain[0]).Parent()
	for i := 1; i < len(chain); i++ {
		p := h.sc.Node(chain[i]).Parent()
		if p != first {
			shared = false
		}
		if p != chain[i-1] {
			strict = false
		}
	}
	if !shared && !strict {
		h.report.Add(CategoryParent, "chain "+key.String()+" members are not a parent chain or siblings",
			h.sc.Name(chain[0]), h.sc.Name(chain[len(chain)-1]))
	}
}

// checkMirror compares a chain with its opposite-side twin per index.
func (h *Hierarchy) checkMirror(key ChainKey, opts Options) {
	var opposite scene.Side
	for _, pair := range mirrorPairs {
		if key.Side == pair[0] {
			opposite = pair[1]
		}
	}
	if opposite == "" {
		return
	}
	twin, ok := h.chains[ChainKey{Side: opposite, Region: key.Region}]
	if !ok {
		return
	}
	chain := h.chains[key]
	if len(chain) != len(twin) {
		h.report.Add(CategoryMirror,
			fmt.Sprintf("chain %s has %d joints, %s/%s has %d", key, len(chain), opposite, key.Region, len(twin)),
			h.sc.Name(chain[0]), h.sc.Name(twin[0]))
		return
	}
	for i := range chain {
		a := h.sc.WorldPosition(chain[i]).Abs().Round(opts.MirrorPrecision)
		b := h.sc.WorldPosition(twin[i]).Abs().Round(opts.MirrorPrecision)
		if d := a.Sub(b).Length(); d > opts.MirrorTolerance {
			h.report.Add(CategoryMirror, fmt.Sprintf("positions differ by %.3f", d),
				h.sc.Name(chain[i]), h.sc.Name(twin[i]))
		}
	}
}
