package scene

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Constraint errors
var (
	ErrNoTargets      = errors.New("constraint needs at least one target")
	ErrSelfConstraint = errors.New("node cannot constrain itself")
)

// ConstraintID addresses a constraint in a Scene.
type ConstraintID int

// ConstraintKind selects which channels a constraint drives.
type ConstraintKind int

const (
	// ConstraintPoint drives translation.
	ConstraintPoint ConstraintKind = iota
	// ConstraintOrient drives rotation.
	ConstraintOrient
)

func (k ConstraintKind) String() string {
	if k == ConstraintOrient {
		return "orient"
	}
	return "point"
}

// Selector makes a constraint follow one target at a time: the one whose
// index is held by a user attribute, rounded and clamped to the target list.
type Selector struct {
	Node NodeID
	Attr string
}

// Constraint drives one node from the average of its targets plus an offset.
// A constraint with a selector uses only the selected target.
type Constraint struct {
	id       ConstraintID
	kind     ConstraintKind
	driven   NodeID
	targets  []NodeID
	offset   Vec3
	selector *Selector
}

func (c *Constraint) ID() ConstraintID     { return c.id }
func (c *Constraint) Kind() ConstraintKind { return c.kind }
func (c *Constraint) Driven() NodeID       { return c.driven }
func (c *Constraint) Offset() Vec3         { return c.offset }

// Targets returns a copy of the driver ids.
func (c *Constraint) Targets() []NodeID { return slices.Clone(c.targets) }

// Selector returns the attribute picking the active target, if any.
func (c *Constraint) Selector() (Selector, bool) {
	if c.selector == nil {
		return Selector{}, false
	}
	return *c.selector, true
}

// Constrain creates a constraint of kind on driven. With maintainOffset the
// driven node keeps its current placement; otherwise it snaps to the targets.
func (s *Scene) Constrain(kind ConstraintKind, driven NodeID, targets []NodeID, maintainOffset bool) (ConstraintID, error) {
	return s.constrain(kind, driven, targets, nil, maintainOffset)
}

// ConstrainSwitch creates a constraint that follows the target selected by
// sel. The offset is measured against the target selected now.
func (s *Scene) ConstrainSwitch(kind ConstraintKind, driven NodeID, targets []NodeID, sel Selector, maintainOffset bool) (ConstraintID, error) {
	if _, ok := s.Attr(sel.Node, sel.Attr); !ok {
		return 0, fmt.Errorf("%w: %s on %d", ErrUnknownChannel, sel.Attr, sel.Node)
	}
	return s.constrain(kind, driven, targets, &sel, maintainOffset)
}

func (s *Scene) constrain(kind ConstraintKind, driven NodeID, targets []NodeID, sel *Selector, maintainOffset bool) (ConstraintID, error) {
	d, err := s.get(driven)
	if err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		return 0, ErrNoTargets
	}
	for _, t := range targets {
		if t == driven {
			return 0, ErrSelfConstraint
		}
		if !s.Exists(t) {
			return 0, fmt.Errorf("%w: target %d", ErrNodeNotFound, t)
		}
	}

	c := &Constraint{kind: kind, driven: driven, targets: slices.Clone(targets), selector: sel}
	goal := s.targetValue(c, func(t NodeID, ch int) float64 {
		if kind == ConstraintPoint {
			return s.WorldPosition(t)[ch]
		}
		return s.nodes[t].rotate[ch]
	})
	switch {
	case maintainOffset && kind == ConstraintPoint:
		c.offset = s.WorldPosition(driven).Sub(goal)
	case maintainOffset:
		c.offset = d.rotate.Sub(goal)
	case kind == ConstraintPoint:
		if err := s.SetWorldPosition(driven, goal); err != nil {
			return 0, err
		}
	default:
		d.rotate = goal
	}

	s.nextConstraint++
	c.id = s.nextConstraint
	s.constraints[c.id] = c
	return c.id, nil
}

// Constraint returns the constraint for id, or nil.
func (s *Scene) Constraint(id ConstraintID) *Constraint {
	return s.constraints[id]
}

// RemoveConstraint deletes a constraint. Unknown ids are ignored.
func (s *Scene) RemoveConstraint(id ConstraintID) {
	delete(s.constraints, id)
}

// ConstraintsOn lists constraints of kind driving id, oldest first.
func (s *Scene) ConstraintsOn(id NodeID, kind ConstraintKind) []ConstraintID {
	var out []ConstraintID
	for cid, c := range s.constraints {
		if c.driven == id && c.kind == kind {
			out = append(out, cid)
		}
	}
	slices.Sort(out)
	return out
}

// AllConstraintsOn lists every constraint driving id, oldest first.
func (s *Scene) AllConstraintsOn(id NodeID) []ConstraintID {
	return append(s.ConstraintsOn(id, ConstraintPoint), s.ConstraintsOn(id, ConstraintOrient)...)
}

// ConstraintsFrom lists constraints that use id as a target, oldest first.
func (s *Scene) ConstraintsFrom(id NodeID) []ConstraintID {
	var out []ConstraintID
	for cid, c := range s.constraints {
		if slices.Contains(c.targets, id) {
			out = append(out, cid)
		}
	}
	slices.Sort(out)
	return out
}

// ActiveTargets returns the targets a constraint currently follows: all of
// them, or the selected one. A missing selector attribute selects index 0.
func (s *Scene) ActiveTargets(id ConstraintID) []NodeID {
	c := s.constraints[id]
	if c == nil {
		return nil
	}
	return s.activeTargets(c)
}

func (s *Scene) activeTargets(c *Constraint) []NodeID {
	if c.selector == nil || len(c.targets) == 0 {
		return c.targets
	}
	idx := 0
	if a, ok := s.Attr(c.selector.Node, c.selector.Attr); ok {
		idx = int(math.Round(a.Value))
	}
	idx = max(0, min(idx, len(c.targets)-1))
	return c.targets[idx : idx+1]
}

// targetValue averages a per-target component over the active targets.
func (s *Scene) targetValue(c *Constraint, value func(t NodeID, ch int) float64) Vec3 {
	targets := s.activeTargets(c)
	var sum Vec3
	for _, t := range targets {
		for i := 0; i < 3; i++ {
			sum[i] += value(t, i)
		}
	}
	return sum.Scale(1 / float64(len(targets)))
}
