// Package rig implements the rig aggregate and its build orchestrator.
//
// A Rig owns the components built on top of one skeleton. Components are
// created through a Registry of Definitions keyed by type tag, and each one
// owns an offset group, an ordered list of control handles and the
// construction arguments it was built from.
//
// # Documents
//
// SerializeRig turns a rig into a Document: an ordered list of Fragments, one
// per component, whose node-valued arguments and attachments are written as
// portable Identifiers. BuildSerializedRig reverses it in three phases:
//
//   - construct: create every missing component, resolving arguments against
//     the rig as built so far
//   - attach: resolve attachment identifiers once every component exists, so
//     fragments may reference components that appear later in the document
//   - nested: build switch components stored under a handle, same rule
//
// Auto-derived components (twist setups) are never read from a document; they
// are rebuilt from the finished graph after every build.
//
// # Identifiers
//
// An Identifier addresses a handle by (side, region, index) within a
// component, a joint by (side, region, index) within a skeleton chain, or any
// other node by name. Index -1 means "last element at resolution time", which
// keeps tip references valid when a list grows by one element. Growing it by
// more than one without re-serializing makes the reference drift.
//
// # Failure policy
//
// Builds favour partial success. A fragment with an unknown type or a failing
// factory is recorded in the BuildResult and skipped; unresolvable identifiers
// are dropped with a warning. Only an invalid rig or a non-positionable
// alignment node aborts an operation.
package rig
