// Package skeleton derives rigging chains from a marked-up joint tree.
//
// Parse walks a scene subtree parent-before-child and reads each joint's
// Markup. Chain start and end markers bound ordered runs of joints keyed by
// (side, region); joints between them carry only the region tag. Twist and
// null joints are bucketed separately and never join a chain.
//
// A Hierarchy is immutable. Structural edits to the scene require a new Parse.
//
// # Errors and validation
//
// With Options.CheckForErrors unset, the first StructuralError (duplicate
// name, end marker before its start) aborts parsing and the partial Hierarchy
// is returned next to the error. With it set, structural problems are recorded
// and parsing continues, then a validation pass fills a Report with
// categorized warnings. Validation never modifies the scene.
package skeleton
