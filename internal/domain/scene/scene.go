package scene

import (
	"errors"
	"fmt"
	"slices"
)

// Scene errors
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrEmptyName    = errors.New("node name cannot be empty")
	ErrCycle        = errors.New("parenting would create a cycle")
)

// Scene owns every node and constraint. It is not safe for concurrent mutation.
type Scene struct {
	nodes          map[NodeID]*Node
	next           NodeID
	constraints    map[ConstraintID]*Constraint
	nextConstraint ConstraintID
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		nodes:       make(map[NodeID]*Node),
		constraints: make(map[ConstraintID]*Constraint),
	}
}

// CreateNode adds a node under parent (NoNode for a world-level node).
func (s *Scene) CreateNode(name string, kind Kind, parent NodeID, opts ...NodeOption) (NodeID, error) {
	if name == "" {
		return NoNode, ErrEmptyName
	}
	if parent != NoNode && !s.Exists(parent) {
		return NoNode, fmt.Errorf("%w: parent %d", ErrNodeNotFound, parent)
	}

	s.next++
	n := &Node{
		id:     s.next,
		name:   name,
		kind:   kind,
		parent: parent,
		scale:  One,
	}
	for _, opt := range opts {
		opt(n)
	}
	s.nodes[n.id] = n
	if parent != NoNode {
		p := s.nodes[parent]
		p.children = append(p.children, n.id)
	}
	return n.id, nil
}

// Exists reports whether id is a live node.
func (s *Scene) Exists(id NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node returns the node for id, or nil.
func (s *Scene) Node(id NodeID) *Node {
	return s.nodes[id]
}

// Len returns the number of live nodes.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Name returns the node's name or "" for unknown ids.
func (s *Scene) Name(id NodeID) string {
	if n := s.nodes[id]; n != nil {
		return n.name
	}
	return ""
}

// IDs returns every live node id in creation order.
func (s *Scene) IDs() []NodeID {
	ids := make([]NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// FindByName returns the first node (lowest id) whose name matches exactly,
// falling back to a namespace-insensitive match on the base name.
func (s *Scene) FindByName(name string) (NodeID, bool) {
	if name == "" {
		return NoNode, false
	}
	ids := s.IDs()
	for _, id := range ids {
		if s.nodes[id].name == name {
			return id, true
		}
	}
	base := BaseName(name)
	for _, id := range ids {
		if s.nodes[id].BaseName() == base {
			return id, true
		}
	}
	return NoNode, false
}

// Rename changes a node's name.
func (s *Scene) Rename(id NodeID, name string) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if name == "" {
		return ErrEmptyName
	}
	n.name = name
	return nil
}

// SetParent moves child under parent, keeping its local transform.
func (s *Scene) SetParent(child, parent NodeID) error {
	c, err := s.get(child)
	if err != nil {
		return err
	}
	if parent != NoNode {
		if !s.Exists(parent) {
			return fmt.Errorf("%w: parent %d", ErrNodeNotFound, parent)
		}
		for p := parent; p != NoNode; p = s.nodes[p].parent {
			if p == child {
				return ErrCycle
			}
		}
	}
	if c.parent != NoNode {
		old := s.nodes[c.parent]
		old.children = slices.DeleteFunc(old.children, func(id NodeID) bool { return id == child })
	}
	c.parent = parent
	if parent != NoNode {
		p := s.nodes[parent]
		p.children = append(p.children, child)
	}
	return nil
}

// Descendants returns root and everything below it, parents before children.
func (s *Scene) Descendants(root NodeID) []NodeID {
	if !s.Exists(root) {
		return nil
	}
	var out []NodeID
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		children := s.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// Ancestors returns the parent path of id, nearest first.
func (s *Scene) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	n := s.nodes[id]
	for n != nil && n.parent != NoNode {
		out = append(out, n.parent)
		n = s.nodes[n.parent]
	}
	return out
}

// SetTranslate sets the local translation.
func (s *Scene) SetTranslate(id NodeID, v Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.translate = v
	return nil
}

// SetRotate sets the local rotation.
func (s *Scene) SetRotate(id NodeID, v Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.rotate = v
	return nil
}

// SetScale sets the local scale.
func (s *Scene) SetScale(id NodeID, v Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.scale = v
	return nil
}

// SetRotateOrder sets the rotate order index (0 = xyz).
func (s *Scene) SetRotateOrder(id NodeID, order int) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.rotateOrder = order
	return nil
}

// SetMarkup replaces the node's markup.
func (s *Scene) SetMarkup(id NodeID, m Markup) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.markup = m.clone()
	return nil
}

// WorldPosition sums local translations from the top of the parent path.
func (s *Scene) WorldPosition(id NodeID) Vec3 {
	var pos Vec3
	for n := s.nodes[id]; n != nil; n = s.nodes[n.parent] {
		pos = pos.Add(n.translate)
	}
	return pos
}

// SetWorldPosition moves id so its world position equals pos.
func (s *Scene) SetWorldPosition(id NodeID, pos Vec3) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	var parentPos Vec3
	if n.parent != NoNode {
		parentPos = s.WorldPosition(n.parent)
	}
	n.translate = pos.Sub(parentPos)
	return nil
}

// Snap aligns id's world position and rotation to target.
func (s *Scene) Snap(id, target NodeID) error {
	t, err := s.get(target)
	if err != nil {
		return err
	}
	if err := s.SetWorldPosition(id, s.WorldPosition(target)); err != nil {
		return err
	}
	s.nodes[id].rotate = t.rotate
	return nil
}

// Delete removes id and its whole subtree. Constraints driving a removed node
// are deleted; removed targets are dropped from surviving constraints.
func (s *Scene) Delete(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	removed := s.Descendants(id)
	gone := make(map[NodeID]bool, len(removed))
	for _, r := range removed {
		gone[r] = true
	}

	for cid, c := range s.constraints {
		if gone[c.driven] {
			delete(s.constraints, cid)
			continue
		}
		c.targets = slices.DeleteFunc(c.targets, func(t NodeID) bool { return gone[t] })
		if len(c.targets) == 0 {
			delete(s.constraints, cid)
		}
	}

	if n.parent != NoNode {
		if p := s.nodes[n.parent]; p != nil {
			p.children = slices.DeleteFunc(p.children, func(c NodeID) bool { return c == id })
		}
	}
	for _, r := range removed {
		delete(s.nodes, r)
	}
	return nil
}

// Duplicate copies the subtree under root and parents the copy under parent.
// Names are prefixed with namespace. Markup, transforms, locks, attributes and
// keys are copied; constraints are not. The returned map goes from original to copy.
func (s *Scene) Duplicate(root NodeID, namespace string, parent NodeID) (NodeID, map[NodeID]NodeID, error) {
	if !s.Exists(root) {
		return NoNode, nil, fmt.Errorf("%w: %d", ErrNodeNotFound, root)
	}
	mapping := make(map[NodeID]NodeID)
	for _, id := range s.Descendants(root) {
		src := s.nodes[id]
		dstParent := parent
		if id != root {
			dstParent = mapping[src.parent]
		}
		newID, err := s.CreateNode(Namespaced(namespace, src.BaseName()), src.kind, dstParent,
			WithTranslate(src.translate), WithRotate(src.rotate), WithScale(src.scale), WithMarkup(src.markup))
		if err != nil {
			return NoNode, nil, err
		}
		dst := s.nodes[newID]
		dst.rotateOrder = src.rotateOrder
		for ch, v := range src.locked {
			if dst.locked == nil {
				dst.locked = make(map[string]bool)
			}
			dst.locked[ch] = v
		}
		for name, a := range src.attrs {
			if dst.attrs == nil {
				dst.attrs = make(map[string]Attr)
			}
			dst.attrs[name] = a
		}
		for ch, keys := range src.keys {
			if dst.keys == nil {
				dst.keys = make(map[string][]Keyframe)
			}
			dst.keys[ch] = slices.Clone(keys)
		}
		mapping[id] = newID
	}
	return mapping[root], mapping, nil
}

func (s *Scene) get(id NodeID) (*Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}
