// Package responsive implements values that vary per breakpoint with mobile
// first cascade: breakpoint without explicit value inherits value of the
// nearest smaller breakpoint that has one.
package responsive

import (
	"fmt"
	"slices"

	yaml "gopkg.in/yaml.v3"

	"gridcss/breakpoint"
)

// Value is either the same value at every breakpoint or a partial mapping
// from breakpoint names to values.
type Value[T any] struct {
	scalar  T
	entries map[string]T
	keys    []string // insertion order, for stable output
	mapped  bool
}

// Scalar creates value used at every breakpoint.
func Scalar[T any](v T) Value[T] {
	return Value[T]{scalar: v}
}

// PerBreakpoint creates value from a mapping. Keys are kept in sorted order,
// use Set to control order.
func PerBreakpoint[T any](m map[string]T) Value[T] {
	v := Value[T]{entries: make(map[string]T, len(m)), mapped: true}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v = v.Set(k, m[k])
	}
	return v
}

// Set returns copy of value with explicit entry for breakpoint name. Setting
// entry on a scalar converts it into empty mapping first.
func (v Value[T]) Set(name string, val T) Value[T] {
	out := Value[T]{entries: make(map[string]T, len(v.entries)+1), mapped: true}
	for _, k := range v.keys {
		out.entries[k] = v.entries[k]
		out.keys = append(out.keys, k)
	}
	if _, exists := out.entries[name]; !exists {
		out.keys = append(out.keys, name)
	}
	out.entries[name] = val
	return out
}

// IsScalar reports value that does not vary per breakpoint.
func (v Value[T]) IsScalar() bool {
	return !v.mapped
}

// ScalarValue returns scalar content, valid only when IsScalar is true.
func (v Value[T]) ScalarValue() T {
	return v.scalar
}

// Keys returns breakpoint names with explicit values in definition order.
func (v Value[T]) Keys() []string {
	return slices.Clone(v.keys)
}

// Explicit returns value set for name without cascading.
func (v Value[T]) Explicit(name string) (T, bool) {
	val, ok := v.entries[name]
	return val, ok
}

// UnmarshalYAML decodes scalars and sequences as Scalar and mappings as
// PerBreakpoint keeping key order.
func (v *Value[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		var s T
		if err := node.Decode(&s); err != nil {
			return err
		}
		*v = Scalar(s)
		return nil
	}

	out := Value[T]{entries: make(map[string]T), mapped: true}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: breakpoint name: %w", node.Content[i].Line, err)
		}
		var val T
		if err := node.Content[i+1].Decode(&val); err != nil {
			return fmt.Errorf("line %d: value for %q: %w", node.Content[i+1].Line, key, err)
		}
		out = out.Set(key, val)
	}
	*v = out
	return nil
}

// MarshalYAML is the inverse of UnmarshalYAML.
func (v Value[T]) MarshalYAML() (any, error) {
	if !v.mapped {
		return v.scalar, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range v.keys {
		var key, val yaml.Node
		if err := key.Encode(k); err != nil {
			return nil, err
		}
		if err := val.Encode(v.entries[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// Get returns effective value for key. Key is breakpoint name or numeric
// length, which is snapped to the largest breakpoint not exceeding it.
// Missing breakpoint inherits value of the nearest smaller breakpoint set
// explicitly, never of a larger one.
func (v Value[T]) Get(reg *breakpoint.Registry, key string) (T, bool) {
	var zero T

	if !v.mapped {
		return v.scalar, true
	}
	if !reg.Has(key) {
		l, err := breakpoint.ParseLength(key)
		if err != nil {
			return zero, false
		}
		return v.GetLength(reg, l)
	}
	if val, ok := v.entries[key]; ok {
		return val, true
	}

	var (
		anchor string
		found  bool
	)
	for _, name := range reg.Names() {
		if _, ok := v.entries[name]; ok {
			anchor, found = name, true
		}
		if name == key {
			break
		}
	}
	if !found {
		return zero, false
	}
	return v.entries[anchor], true
}

// GetLength returns effective value at a viewport width.
func (v Value[T]) GetLength(reg *breakpoint.Registry, l breakpoint.Length) (T, bool) {
	if !v.mapped {
		return v.scalar, true
	}
	bp, err := reg.Nearest(l)
	if err != nil || bp.Name == "" {
		var zero T
		return zero, false
	}
	return v.Get(reg, bp.Name)
}

// Current returns effective value at the scope's current breakpoint. Outside
// of any breakpoint scalar value is returned as is and mappings do not resolve.
func (v Value[T]) Current(reg *breakpoint.Registry, scope *breakpoint.Scope) (T, bool) {
	if !v.mapped {
		return v.scalar, true
	}
	if scope == nil || scope.Current() == "" {
		var zero T
		return zero, false
	}
	return v.Get(reg, scope.Current())
}

// Require is Get for lookups which must produce a value. Failure is fatal
// missing-value diagnostic.
func (v Value[T]) Require(reg *breakpoint.Registry, key string) (T, error) {
	val, ok := v.Get(reg, key)
	if !ok {
		return val, breakpoint.NewFatal(breakpoint.RuleMissingValue, key,
			"no value for breakpoint and no smaller breakpoint defines one (defined: %v)", v.keys)
	}
	return val, nil
}
