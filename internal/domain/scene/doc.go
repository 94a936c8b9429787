// Package scene implements the scene-graph primitives the rigging core runs on.
//
// Nodes, constraints and animation keys live in indexed tables owned by a Scene.
// Everything outside the package refers to them by id (NodeID, ConstraintID), so
// parent/child and driver/driven relationships never form pointer cycles.
//
// # Transforms
//
// The scene is a positional model: a node's world position is the sum of the
// local translations on its parent path. Rotation and scale are carried as
// channel values (locked, keyed, zeroed, baked) but do not propagate. Deformation
// and full matrix math are outside this package.
//
// # Markup
//
// Joints carry a typed Markup (side, region, chain start/end, animated, twist,
// null) plus an Extra map for open-ended metadata. The skeleton package reads
// markup to derive chains.
//
// # Constraints and keys
//
// Point and orient constraints drive a node from one or more targets, optionally
// keeping the offset present when they were created. KeyCopyBaker samples
// constraints over a frame range and writes keys on the driven nodes.
package scene
