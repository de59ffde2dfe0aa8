// Package layout turns declarative layout files into mobile first
// stylesheets.
package layout

import (
	"bytes"
	"errors"
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"gridcss/breakpoint"
	"gridcss/responsive"
)

// Rule is a single selector with its responsive properties.
type Rule struct {
	Selector string `yaml:"selector"`
	// Breakpoints to generate output for, resolver classes when empty.
	Breakpoints []string `yaml:"breakpoints,omitempty"`
	// Explicit references, when present the rule is emitted once per
	// reference instead of cascading.
	Media      []string                             `yaml:"media,omitempty"`
	Properties map[string]responsive.Value[string] `yaml:"properties"`
}

// Layout is the content of a layout file.
type Layout struct {
	// Overrides configured number of columns for fraction().
	Columns int    `yaml:"columns,omitempty"`
	Rules   []Rule `yaml:"rules"`
}

// Parse decodes layout file. Unknown fields are errors.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Layout) validate() error {
	if l.Columns < 0 {
		return fmt.Errorf("layout columns must not be negative, got %d", l.Columns)
	}
	var errs []error
	for i, r := range l.Rules {
		if r.Selector == "" {
			errs = append(errs, fmt.Errorf("rule %d has no selector", i))
		}
		if len(r.Media) > 0 && len(r.Breakpoints) > 0 {
			errs = append(errs, fmt.Errorf("rule %q: media and breakpoints are mutually exclusive", r.Selector))
		}
	}
	return errors.Join(errs...)
}

// Check reports property keys and rule breakpoints missing from registry.
func (l *Layout) Check(reg *breakpoint.Registry) breakpoint.Diagnostics {
	var diags breakpoint.Diagnostics
	for _, r := range l.Rules {
		for _, name := range r.Breakpoints {
			if !reg.Has(name) {
				diags = append(diags, breakpoint.NewWarning(breakpoint.RuleUnknownBreakpoint, name,
					"rule %q lists unknown breakpoint", r.Selector))
			}
		}
		for prop, v := range r.Properties {
			for _, key := range v.Keys() {
				if !reg.Has(key) {
					diags = append(diags, breakpoint.NewWarning(breakpoint.RuleUnknownBreakpoint, key,
						"property %q of rule %q uses unknown breakpoint, value is ignored", prop, r.Selector))
				}
			}
		}
	}
	return diags
}
