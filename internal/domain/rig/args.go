package rig

import (
	"slices"
	"strings"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// hiddenSuffix marks arguments that are internal to a factory and never serialized.
const hiddenSuffix = "_hidden"

// Arg is one named construction argument.
type Arg struct {
	Name  string
	Value any
}

// Args is an ordered set of construction arguments. Values are literals
// (string, bool, int, float64 and slices of them), scene.NodeID or
// []scene.NodeID on a live rig, and Identifier or []Identifier inside a
// Fragment.
type Args struct {
	items []Arg
}

// NewArgs builds Args from name/value pairs in order. A non-string name or a
// trailing name without a value is ignored.
func NewArgs(pairs ...any) Args {
	var a Args
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		a.Set(name, pairs[i+1])
	}
	return a
}

// Set stores value under name, keeping the position of an existing entry.
func (a *Args) Set(name string, value any) {
	for i := range a.items {
		if a.items[i].Name == name {
			a.items[i].Value = value
			return
		}
	}
	a.items = append(a.items, Arg{Name: name, Value: value})
}

// With returns a copy with name set to value.
func (a Args) With(name string, value any) Args {
	c := a.Clone()
	c.Set(name, value)
	return c
}

// Delete removes name.
func (a *Args) Delete(name string) {
	a.items = slices.DeleteFunc(a.items, func(arg Arg) bool { return arg.Name == name })
}

// Get returns the value stored under name.
func (a Args) Get(name string) (any, bool) {
	for _, arg := range a.items {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is set.
func (a Args) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Len returns the number of arguments.
func (a Args) Len() int { return len(a.items) }

// Items returns the arguments in order.
func (a Args) Items() []Arg { return slices.Clone(a.items) }

// Names returns the argument names in order.
func (a Args) Names() []string {
	names := make([]string, len(a.items))
	for i, arg := range a.items {
		names[i] = arg.Name
	}
	return names
}

// Clone returns an independent copy. Slice values are shared.
func (a Args) Clone() Args {
	return Args{items: slices.Clone(a.items)}
}

// Visible drops arguments whose name ends in "_hidden".
func (a Args) Visible() Args {
	var out Args
	for _, arg := range a.items {
		if !strings.HasSuffix(arg.Name, hiddenSuffix) {
			out.items = append(out.items, arg)
		}
	}
	return out
}

// Node returns a node-valued argument.
func (a Args) Node(name string) (scene.NodeID, bool) {
	v, _ := a.Get(name)
	id, ok := v.(scene.NodeID)
	return id, ok && id != scene.NoNode
}

// Nodes returns a node-list argument. A single node is returned as a one-element list.
func (a Args) Nodes(name string) []scene.NodeID {
	v, _ := a.Get(name)
	switch t := v.(type) {
	case []scene.NodeID:
		return slices.Clone(t)
	case scene.NodeID:
		if t != scene.NoNode {
			return []scene.NodeID{t}
		}
	}
	return nil
}

// String returns a string argument or def.
func (a Args) String(name, def string) string {
	if v, ok := a.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns a bool argument or def.
func (a Args) Bool(name string, def bool) bool {
	if v, ok := a.Get(name); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Float returns a numeric argument as float64 or def.
func (a Args) Float(name string, def float64) float64 {
	v, ok := a.Get(name)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// Strings returns a string-list argument.
func (a Args) Strings(name string) []string {
	v, _ := a.Get(name)
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
