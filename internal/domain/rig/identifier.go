package rig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
)

// IdentifierKind selects how an Identifier is resolved.
type IdentifierKind string

const (
	KindFlag     IdentifierKind = "flag"
	KindSkeleton IdentifierKind = "skeleton"
	KindNamed    IdentifierKind = "named"
)

// LastIndex addresses the last element of a list at resolution time.
const LastIndex = -1

// Identifier is a portable reference to a handle, a chain joint or a named
// node. Type optionally narrows a flag lookup to one component type.
type Identifier struct {
	Kind   IdentifierKind
	Type   string
	Side   scene.Side
	Region string
	Index  int
	Name   string
}

// FlagID addresses handle index of the component at (side, region).
func FlagID(side scene.Side, region string, index int) Identifier {
	return Identifier{Kind: KindFlag, Side: side, Region: region, Index: index}
}

// SkeletonID addresses joint index of the (side, region) chain.
func SkeletonID(side scene.Side, region string, index int) Identifier {
	return Identifier{Kind: KindSkeleton, Side: side, Region: region, Index: index}
}

// NamedID addresses a node by name.
func NamedID(name string) Identifier {
	return Identifier{Kind: KindNamed, Name: name}
}

// String renders the identifier as kind::side::region::index (flag and
// skeleton, with ::type appended when set) or named::name.
func (id Identifier) String() string {
	if id.Kind == KindNamed {
		return fmt.Sprintf("%s::%s", id.Kind, id.Name)
	}
	s := fmt.Sprintf("%s::%s::%s::%d", id.Kind, id.Side, id.Region, id.Index)
	if id.Type != "" {
		s += "::" + id.Type
	}
	return s
}

// ParseIdentifier parses the String form.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.Split(s, "::")
	if len(parts) < 2 {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	switch IdentifierKind(parts[0]) {
	case KindNamed:
		name := strings.Join(parts[1:], "::")
		if name == "" {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
		}
		return NamedID(name), nil
	case KindFlag, KindSkeleton:
		if len(parts) != 4 && len(parts) != 5 {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
		}
		idx, err := strconv.Atoi(parts[3])
		if err != nil || parts[1] == "" || parts[2] == "" {
			return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
		}
		id := Identifier{Kind: IdentifierKind(parts[0]), Side: scene.Side(parts[1]), Region: parts[2], Index: idx}
		if len(parts) == 5 {
			id.Type = parts[4]
		}
		return id, nil
	}
	return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
}

// ToIdentifier converts a live node into a portable identifier. Handles
// become flag identifiers, chain joints skeleton identifiers and anything
// else a named identifier. The last element of a list is written as LastIndex.
func (r *Rig) ToIdentifier(node scene.NodeID, h *skeleton.Hierarchy) Identifier {
	if c, idx := r.ComponentOf(node); c != nil {
		return Identifier{
			Kind:   KindFlag,
			Type:   c.typ,
			Side:   c.side,
			Region: c.region,
			Index:  tipIndex(idx, len(c.handles)),
		}
	}
	if h != nil {
		if key, idx, ok := h.ChainOf(node); ok {
			n := len(h.FullChain(key.Side, key.Region))
			return SkeletonID(key.Side, key.Region, tipIndex(idx, n))
		}
	}
	return NamedID(scene.BaseName(r.sc.Name(node)))
}

// FromIdentifier resolves id against the rig and hierarchy. It never fails
// loudly: an unresolvable identifier returns (NoNode, false).
func (r *Rig) FromIdentifier(id Identifier, h *skeleton.Hierarchy) (scene.NodeID, bool) {
	switch id.Kind {
	case KindFlag:
		for _, c := range r.components {
			if c.side != id.Side || c.region != id.Region || len(c.handles) == 0 {
				continue
			}
			if id.Type != "" && c.typ != id.Type {
				continue
			}
			return pick(c.Flags(), id.Index)
		}
	case KindSkeleton:
		if h != nil {
			return pick(h.FullChain(id.Side, id.Region), id.Index)
		}
	case KindNamed:
		if ns := r.Namespace(); ns != "" {
			if n, ok := r.sc.FindByName(scene.Namespaced(ns, id.Name)); ok {
				return n, true
			}
		}
		return r.sc.FindByName(id.Name)
	}
	return scene.NoNode, false
}

// FromIdentifiers resolves a list, dropping identifiers that resolve to nothing.
func (r *Rig) FromIdentifiers(ids []Identifier, h *skeleton.Hierarchy) []scene.NodeID {
	out := make([]scene.NodeID, 0, len(ids))
	for _, id := range ids {
		if n, ok := r.FromIdentifier(id, h); ok {
			out = append(out, n)
		}
	}
	return out
}

// ToIdentifiers converts a list of nodes.
func (r *Rig) ToIdentifiers(nodes []scene.NodeID, h *skeleton.Hierarchy) []Identifier {
	out := make([]Identifier, len(nodes))
	for i, n := range nodes {
		out[i] = r.ToIdentifier(n, h)
	}
	return out
}

func tipIndex(idx, n int) int {
	if idx == n-1 {
		return LastIndex
	}
	return idx
}

// pick applies the index convention: LastIndex is the last element, other
// negatives count from the end, and anything out of range falls back to 0.
func pick(list []scene.NodeID, idx int) (scene.NodeID, bool) {
	if len(list) == 0 {
		return scene.NoNode, false
	}
	if idx < 0 {
		idx += len(list)
	}
	if idx < 0 || idx >= len(list) {
		idx = 0
	}
	return list[idx], true
}
