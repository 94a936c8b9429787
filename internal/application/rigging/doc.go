// Package rigging is the application layer for rig files. It loads
// skeletons through a read-through cache, builds rigs from .rig documents,
// saves them back, checks them against the registered component versions
// and records every run in the build history.
package rigging
