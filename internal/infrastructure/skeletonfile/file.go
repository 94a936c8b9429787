// Package skeletonfile exports skeletons to JSON ".skl" files and imports
// them back into a scene.
package skeletonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// Extension is the required file extension for skeleton files.
const Extension = ".skl"

// FormatVersion is written to every exported file.
const FormatVersion = 1

var (
	ErrExtension     = errors.New("skeleton files must use the " + Extension + " extension")
	ErrNotJoint      = errors.New("skeleton root is not a joint")
	ErrNoRoot        = errors.New("skeleton file has no root joint")
	ErrMultipleRoot  = errors.New("skeleton file has more than one root joint")
	ErrUnknownParent = errors.New("joint parent is not in the file")
)

// File is the on-disk skeleton. Joints are listed parents first.
type File struct {
	Version int     `json:"version"`
	Joints  []Joint `json:"joints"`
}

// Joint is one serialized joint. Names are stored without namespace.
type Joint struct {
	Name          string      `json:"name"`
	Parent        string      `json:"parent,omitempty"`
	WorldPosition scene.Vec3  `json:"world_position"`
	Rotate        scene.Vec3  `json:"rotate"`
	Scale         scene.Vec3  `json:"scale"`
	RotateOrder   int         `json:"rotate_order,omitempty"`
	Markup        *Markup     `json:"markup,omitempty"`
	Attributes    []Attribute `json:"attributes,omitempty"`
}

// Markup mirrors scene.Markup with JSON names.
type Markup struct {
	Side     string         `json:"side,omitempty"`
	Region   string         `json:"region,omitempty"`
	Start    string         `json:"start,omitempty"`
	End      string         `json:"end,omitempty"`
	Animated bool           `json:"animated,omitempty"`
	Twist    bool           `json:"twist,omitempty"`
	Null     bool           `json:"null,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Attribute is a user attribute with its default.
type Attribute struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Default float64 `json:"default"`
}

// Lookup returns the joint named name.
func (f *File) Lookup(name string) (Joint, bool) {
	for _, j := range f.Joints {
		if j.Name == name {
			return j, true
		}
	}
	return Joint{}, false
}

// Root returns the single joint without a parent.
func (f *File) Root() (Joint, error) {
	var roots []Joint
	for _, j := range f.Joints {
		if j.Parent == "" {
			roots = append(roots, j)
		}
	}
	switch len(roots) {
	case 0:
		return Joint{}, ErrNoRoot
	case 1:
		return roots[0], nil
	}
	return Joint{}, fmt.Errorf("%w: %s and %s", ErrMultipleRoot, roots[0].Name, roots[1].Name)
}

// Export captures the joints under root. Non-joint children are skipped
// along with their subtrees.
func Export(sc *scene.Scene, root scene.NodeID) (*File, error) {
	n := sc.Node(root)
	if n == nil || !n.IsJoint() {
		return nil, ErrNotJoint
	}
	f := &File{Version: FormatVersion}
	var walk func(id scene.NodeID, parent string)
	walk = func(id scene.NodeID, parent string) {
		node := sc.Node(id)
		j := Joint{
			Name:          node.BaseName(),
			Parent:        parent,
			WorldPosition: sc.WorldPosition(id),
			Rotate:        node.Rotate(),
			Scale:         node.Scale(),
			RotateOrder:   node.RotateOrder(),
			Markup:        toMarkup(node.Markup()),
		}
		for _, name := range sc.AttrNames(id) {
			a, _ := sc.Attr(id, name)
			j.Attributes = append(j.Attributes, Attribute{Name: name, Value: a.Value, Default: a.Default})
		}
		f.Joints = append(f.Joints, j)
		for _, child := range node.Children() {
			if c := sc.Node(child); c != nil && c.IsJoint() {
				walk(child, j.Name)
			}
		}
	}
	walk(root, "")
	return f, nil
}

// Import creates the joints of f in sc under namespace and returns the root.
func Import(sc *scene.Scene, f *File, namespace string) (scene.NodeID, error) {
	if _, err := f.Root(); err != nil {
		return scene.NoNode, err
	}
	created := make(map[string]scene.NodeID, len(f.Joints))
	var root scene.NodeID
	for _, j := range f.Joints {
		parent := scene.NoNode
		if j.Parent != "" {
			p, ok := created[j.Parent]
			if !ok {
				cleanup(sc, root)
				return scene.NoNode, fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, j.Parent, j.Name)
			}
			parent = p
		}
		id, err := createJoint(sc, j, namespace, parent)
		if err != nil {
			cleanup(sc, root)
			return scene.NoNode, err
		}
		if parent == scene.NoNode {
			root = id
		}
		created[j.Name] = id
	}
	log.Debug(log.CatStore, "imported skeleton", "root", sc.Name(root), "joints", len(f.Joints))
	return root, nil
}

func cleanup(sc *scene.Scene, root scene.NodeID) {
	if root != scene.NoNode {
		_ = sc.Delete(root)
	}
}

func createJoint(sc *scene.Scene, j Joint, namespace string, parent scene.NodeID) (scene.NodeID, error) {
	scale := j.Scale
	if scale == (scene.Vec3{}) {
		scale = scene.One
	}
	id, err := sc.CreateNode(scene.Namespaced(namespace, j.Name), scene.KindJoint, parent,
		scene.WithRotate(j.Rotate), scene.WithScale(scale), scene.WithMarkup(fromMarkup(j.Markup)))
	if err != nil {
		return scene.NoNode, fmt.Errorf("creating joint %s: %w", j.Name, err)
	}
	if err := sc.SetWorldPosition(id, j.WorldPosition); err != nil {
		return scene.NoNode, err
	}
	if err := sc.SetRotateOrder(id, j.RotateOrder); err != nil {
		return scene.NoNode, err
	}
	for _, a := range j.Attributes {
		if err := sc.AddAttr(id, a.Name, a.Value, a.Default); err != nil {
			return scene.NoNode, err
		}
	}
	return id, nil
}

// Merge adds the joints of f that root's hierarchy lacks, matched by base
// name. A new joint is parented to its file parent when that exists, else
// under root.
func Merge(sc *scene.Scene, root scene.NodeID, f *File) ([]scene.NodeID, error) {
	if n := sc.Node(root); n == nil || !n.IsJoint() {
		return nil, ErrNotJoint
	}
	namespace := namespaceOf(sc.Name(root))
	existing := joints(sc, root)
	fileRoot, err := f.Root()
	if err != nil {
		return nil, err
	}
	existing[fileRoot.Name] = root

	var added []scene.NodeID
	for _, j := range f.Joints {
		if _, ok := existing[j.Name]; ok {
			continue
		}
		parent, ok := existing[j.Parent]
		if !ok {
			parent = root
		}
		id, err := createJoint(sc, j, namespace, parent)
		if err != nil {
			return added, err
		}
		existing[j.Name] = id
		added = append(added, id)
	}
	log.Info(log.CatStore, "merged skeleton", "root", sc.Name(root), "added", len(added))
	return added, nil
}

// RestoreBindPose moves every joint under root found in f back to its saved
// world position and rotation. The root matches the file root by position
// in the hierarchy, not by name.
func RestoreBindPose(sc *scene.Scene, root scene.NodeID, f *File) error {
	fileRoot, err := f.Root()
	if err != nil {
		return err
	}
	for _, id := range sc.Descendants(root) {
		n := sc.Node(id)
		if !n.IsJoint() {
			continue
		}
		j, ok := fileRoot, id == root
		if !ok {
			j, ok = f.Lookup(n.BaseName())
		}
		if !ok {
			continue
		}
		if err := sc.SetWorldPosition(id, j.WorldPosition); err != nil {
			return err
		}
		if err := sc.SetRotate(id, j.Rotate); err != nil {
			return err
		}
	}
	return nil
}

// RestoreMarkup re-applies markup and user attributes from f. Existing user
// attributes are removed first.
func RestoreMarkup(sc *scene.Scene, root scene.NodeID, f *File) error {
	fileRoot, err := f.Root()
	if err != nil {
		return err
	}
	for _, id := range sc.Descendants(root) {
		n := sc.Node(id)
		if !n.IsJoint() {
			continue
		}
		j, ok := fileRoot, id == root
		if !ok {
			j, ok = f.Lookup(n.BaseName())
		}
		if !ok {
			log.Warn(log.CatStore, "no saved markup for joint", "joint", n.Name())
			continue
		}
		if err := sc.SetMarkup(id, fromMarkup(j.Markup)); err != nil {
			return err
		}
		for _, name := range sc.AttrNames(id) {
			sc.DeleteAttr(id, name)
		}
		for _, a := range j.Attributes {
			if err := sc.AddAttr(id, a.Name, a.Value, a.Default); err != nil {
				return err
			}
		}
	}
	return nil
}

// Write stores f at path as indented JSON.
func Write(path string, f *File) error {
	if err := checkExtension(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding skeleton: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating skeleton directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing skeleton: %w", err)
	}
	log.Info(log.CatStore, "exported skeleton", "path", path, "joints", len(f.Joints))
	return nil
}

// Read loads the skeleton file at path.
func Read(path string) (*File, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skeleton: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}

func checkExtension(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("%w: %s", ErrExtension, path)
	}
	return nil
}

func joints(sc *scene.Scene, root scene.NodeID) map[string]scene.NodeID {
	out := make(map[string]scene.NodeID)
	for _, id := range sc.Descendants(root) {
		if n := sc.Node(id); n.IsJoint() {
			out[n.BaseName()] = id
		}
	}
	return out
}

func namespaceOf(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[:i]
	}
	return ""
}

func toMarkup(m scene.Markup) *Markup {
	if m.IsZero() {
		return nil
	}
	return &Markup{
		Side:     string(m.Side),
		Region:   m.Region,
		Start:    m.Start,
		End:      m.End,
		Animated: m.Animated,
		Twist:    m.Twist,
		Null:     m.Null,
		Extra:    m.Extra,
	}
}

func fromMarkup(m *Markup) scene.Markup {
	if m == nil {
		return scene.Markup{}
	}
	return scene.Markup{
		Side:     scene.Side(m.Side),
		Region:   m.Region,
		Start:    m.Start,
		End:      m.End,
		Animated: m.Animated,
		Twist:    m.Twist,
		Null:     m.Null,
		Extra:    m.Extra,
	}
}
