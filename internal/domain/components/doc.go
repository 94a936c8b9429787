// Package components holds the concrete rig component types.
//
// Every type is a rig.Definition registered by Register. World, Cog and
// Pelvis exist at most once per rig. FK and IK build on a skeleton chain.
// MultiConstraint is a space switch nested under another component's handle,
// and Twist is derived from the skeleton's twist sets after every build.
package components
