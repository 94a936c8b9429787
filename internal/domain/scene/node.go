package scene

import (
	"math"
	"slices"
	"strings"
)

// NodeID addresses a node in a Scene. The zero value is NoNode.
type NodeID int

// NoNode is the id of no node.
const NoNode NodeID = 0

// Kind classifies scene nodes.
type Kind int

const (
	KindTransform Kind = iota
	KindJoint
	KindGroup
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindJoint:
		return "joint"
	case KindGroup:
		return "group"
	case KindHandle:
		return "handle"
	default:
		return "transform"
	}
}

// Channel names for the nine transform channels.
const (
	ChanTX = "tx"
	ChanTY = "ty"
	ChanTZ = "tz"
	ChanRX = "rx"
	ChanRY = "ry"
	ChanRZ = "rz"
	ChanSX = "sx"
	ChanSY = "sy"
	ChanSZ = "sz"
)

var (
	TranslateChannels = []string{ChanTX, ChanTY, ChanTZ}
	RotateChannels    = []string{ChanRX, ChanRY, ChanRZ}
	ScaleChannels     = []string{ChanSX, ChanSY, ChanSZ}
	// TransformChannels is translate, rotate then scale.
	TransformChannels = []string{ChanTX, ChanTY, ChanTZ, ChanRX, ChanRY, ChanRZ, ChanSX, ChanSY, ChanSZ}
)

// IsTransformChannel reports whether ch is one of the nine transform channels.
func IsTransformChannel(ch string) bool {
	return slices.Contains(TransformChannels, ch)
}

// Vec3 is a 3-component vector.
type Vec3 [3]float64

// One is the identity scale.
var One = Vec3{1, 1, 1}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

// Scale multiplies every component by f.
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v[0] * f, v[1] * f, v[2] * f} }

// Length is the euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 {
	return Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

// Round rounds every component to the given number of decimal places.
func (v Vec3) Round(places int) Vec3 {
	p := math.Pow(10, float64(places))
	return Vec3{math.Round(v[0]*p) / p, math.Round(v[1]*p) / p, math.Round(v[2]*p) / p}
}

// ApproxEqual compares component-wise within eps.
func (v Vec3) ApproxEqual(o Vec3, eps float64) bool {
	return math.Abs(v[0]-o[0]) <= eps && math.Abs(v[1]-o[1]) <= eps && math.Abs(v[2]-o[2]) <= eps
}

// Attr is a user-defined animatable attribute.
type Attr struct {
	Value   float64
	Default float64
}

// Node is a single entry in the scene arena. Mutation goes through Scene.
type Node struct {
	id          NodeID
	name        string
	kind        Kind
	parent      NodeID
	children    []NodeID
	translate   Vec3
	rotate      Vec3
	scale       Vec3
	rotateOrder int
	markup      Markup
	locked      map[string]bool
	attrs       map[string]Attr
	keys        map[string][]Keyframe
}

func (n *Node) ID() NodeID        { return n.id }
func (n *Node) Name() string      { return n.name }
func (n *Node) Kind() Kind        { return n.kind }
func (n *Node) Parent() NodeID    { return n.parent }
func (n *Node) Translate() Vec3   { return n.translate }
func (n *Node) Rotate() Vec3      { return n.rotate }
func (n *Node) Scale() Vec3       { return n.scale }
func (n *Node) RotateOrder() int  { return n.rotateOrder }
func (n *Node) Markup() Markup    { return n.markup }
func (n *Node) BaseName() string  { return BaseName(n.name) }
func (n *Node) IsJoint() bool     { return n.kind == KindJoint }
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// Children returns a copy of the child ids in insertion order.
func (n *Node) Children() []NodeID {
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// NodeOption configures a node at creation.
type NodeOption func(*Node)

// WithTranslate sets the local translation.
func WithTranslate(v Vec3) NodeOption {
	return func(n *Node) { n.translate = v }
}

// WithRotate sets the local rotation.
func WithRotate(v Vec3) NodeOption {
	return func(n *Node) { n.rotate = v }
}

// WithScale sets the local scale.
func WithScale(v Vec3) NodeOption {
	return func(n *Node) { n.scale = v }
}

// WithMarkup sets the rigging markup.
func WithMarkup(m Markup) NodeOption {
	return func(n *Node) { n.markup = m.clone() }
}

// BaseName strips any namespace prefix ("ns:child:name" -> "name").
func BaseName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Namespaced joins a namespace and a name. An empty namespace returns name.
func Namespaced(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return strings.TrimSuffix(namespace, ":") + ":" + name
}
