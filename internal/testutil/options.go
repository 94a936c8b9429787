package testutil

import "github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"

// jointData holds everything needed to create one fixture joint.
type jointData struct {
	name   string
	parent string
	kind   scene.Kind
	pos    scene.Vec3
	scale  scene.Vec3
	markup scene.Markup
}

func defaultJoint(name, parent string) jointData {
	return jointData{name: name, parent: parent, kind: scene.KindJoint, scale: scene.One}
}

// JointOption configures a fixture joint.
type JointOption func(*jointData)

// At sets the local translation.
func At(x, y, z float64) JointOption {
	return func(j *jointData) { j.pos = scene.Vec3{x, y, z} }
}

// Scaled sets a non-default scale.
func Scaled(x, y, z float64) JointOption {
	return func(j *jointData) { j.scale = scene.Vec3{x, y, z} }
}

// Side sets the markup side.
func Side(s scene.Side) JointOption {
	return func(j *jointData) { j.markup.Side = s }
}

// Region tags the joint as a chain member.
func Region(r string) JointOption {
	return func(j *jointData) { j.markup.Region = r }
}

// Start marks the joint as the first of a chain.
func Start(region string) JointOption {
	return func(j *jointData) { j.markup.Start = region }
}

// End marks the joint as the last of a chain.
func End(region string) JointOption {
	return func(j *jointData) { j.markup.End = region }
}

// Animated marks the joint as animated.
func Animated() JointOption {
	return func(j *jointData) { j.markup.Animated = true }
}

// Twist marks the joint as a twist joint of region.
func Twist(region string) JointOption {
	return func(j *jointData) {
		j.markup.Twist = true
		j.markup.Region = region
	}
}

// Null marks the joint as a null.
func Null() JointOption {
	return func(j *jointData) { j.markup.Null = true }
}

// Group makes the node a plain group instead of a joint.
func Group() JointOption {
	return func(j *jointData) { j.kind = scene.KindGroup }
}
