// Package audit inspects compiled stylesheets: it maps media queries back to
// breakpoint references and decodes serialized breakpoints.
package audit

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"gridcss/breakpoint"
	"gridcss/css"
)

// Block describes single @media block of inspected stylesheet.
type Block struct {
	Query     string
	Reference string // matched reference, empty when no breakpoint produces query
	Print     bool   // query applies to print media
	Selectors []string
}

// Report is the result of stylesheet inspection.
type Report struct {
	TopLevel   []string // selectors outside of @media blocks
	Blocks     []Block
	Serialized []breakpoint.Breakpoint // decoded serialized registry, if found
	Mismatches []string                // differences between serialized and configured registries
	Warnings   []string
}

// Inspector maps compiled output back to configured breakpoints.
type Inspector struct {
	log       *zap.Logger
	res       *breakpoint.Resolver
	serialize string
}

func NewInspector(res *breakpoint.Resolver, serializeSelector string, log *zap.Logger) *Inspector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inspector{log: log.Named("audit"), res: res, serialize: serializeSelector}
}

// Inspect analyses parsed stylesheet.
func (in *Inspector) Inspect(sheet *css.Stylesheet) *Report {
	rpt := &Report{Warnings: append([]string(nil), sheet.Warnings...)}

	for _, item := range sheet.Items {
		switch {
		case item.Rule != nil:
			if item.Rule.Selector == in.serialize && in.serialize != "" {
				in.serialized(rpt, *item.Rule)
				continue
			}
			rpt.TopLevel = append(rpt.TopLevel, item.Rule.Selector)
		case item.MediaBlock != nil:
			rpt.Blocks = append(rpt.Blocks, in.block(item.MediaBlock))
		}
	}
	sort.Sort(natural.StringSlice(rpt.TopLevel))
	return rpt
}

func (in *Inspector) block(mb *css.MediaBlock) Block {
	b := Block{Query: mb.Query.Raw, Print: mb.Query.HasType("print")}
	for _, r := range mb.Rules {
		b.Selectors = append(b.Selectors, r.Selector)
	}
	sort.Sort(natural.StringSlice(b.Selectors))

	if o, ok := mb.Query.Feature("orientation"); ok {
		b.Reference = strings.ToLower(o)
		return b
	}

	lo, okLo := in.bound(mb.Query, "min-width")
	hi, okHi := in.bound(mb.Query, "max-width")
	if !okLo && !okHi {
		in.log.Debug("Media query does not use viewport width", zap.String("query", b.Query))
		return b
	}
	if ref, ok := in.res.Match(lo, hi); ok {
		b.Reference = ref.String()
	}
	return b
}

// bound returns feature value in registry units, 0 when absent.
func (in *Inspector) bound(mq css.MediaQuery, name string) (float64, bool) {
	v, ok := mq.Feature(name)
	if !ok {
		return 0, false
	}
	l, err := breakpoint.ParseLength(v)
	if err != nil {
		in.log.Debug("Unable to parse media feature", zap.String("feature", name), zap.String("value", v), zap.Error(err))
		return 0, false
	}
	n, err := in.res.Standard().Normalize(l)
	if err != nil {
		in.log.Debug("Unable to normalize media feature", zap.String("feature", name), zap.String("value", v), zap.Error(err))
		return 0, false
	}
	return n, true
}

func (in *Inspector) serialized(rpt *Report, r css.Rule) {
	v, ok := r.GetProperty("font-family")
	if !ok {
		rpt.Warnings = append(rpt.Warnings, fmt.Sprintf("rule %q has no serialized breakpoints", r.Selector))
		return
	}
	bps, err := breakpoint.ParseSerialized(v.Raw)
	if err != nil {
		rpt.Warnings = append(rpt.Warnings, fmt.Sprintf("unable to decode serialized breakpoints: %v", err))
		return
	}
	rpt.Serialized = bps

	std := in.res.Standard()
	seen := make(map[string]bool, len(bps))
	for _, bp := range bps {
		seen[bp.Name] = true
		have, ok := std.Lookup(bp.Name)
		if !ok {
			rpt.Mismatches = append(rpt.Mismatches, fmt.Sprintf("%s: not configured", bp.Name))
			continue
		}
		n, err := std.Normalize(bp.Threshold)
		if err != nil || math.Abs(n-have.Normalized()) > 1e-9 {
			rpt.Mismatches = append(rpt.Mismatches, fmt.Sprintf("%s: compiled %s, configured %s", bp.Name, bp.Threshold, have.Threshold))
		}
	}
	for _, name := range std.Names() {
		if !seen[name] {
			rpt.Mismatches = append(rpt.Mismatches, fmt.Sprintf("%s: missing from compiled stylesheet", name))
		}
	}
}

// WriteTo writes human readable report.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	tw := newTreeWriter()

	tw.line(0, "Top level rules: %d", len(r.TopLevel))
	if len(r.TopLevel) > 0 {
		tw.list(1, "selectors", r.TopLevel)
	}

	tw.line(0, "Media blocks: %d", len(r.Blocks))
	for i, b := range r.Blocks {
		tw.line(1, "Block[%d]", i)
		tw.field(2, "query", b.Query)
		if b.Reference != "" {
			tw.field(2, "breakpoint", b.Reference)
		} else {
			tw.line(2, "breakpoint: <unmatched>")
		}
		if b.Print {
			tw.line(2, "print: yes")
		}
		tw.list(2, "selectors", b.Selectors)
	}

	if len(r.Serialized) > 0 {
		tw.line(0, "Serialized breakpoints: %d", len(r.Serialized))
		for _, bp := range r.Serialized {
			tw.line(1, "%s = %s", bp.Name, bp.Threshold)
		}
	}
	if len(r.Mismatches) > 0 {
		tw.line(0, "Mismatches: %d", len(r.Mismatches))
		for _, m := range r.Mismatches {
			tw.line(1, "%s", m)
		}
	}
	if len(r.Warnings) > 0 {
		tw.line(0, "Warnings: %d", len(r.Warnings))
		for _, m := range r.Warnings {
			tw.line(1, "%s", m)
		}
	}

	n, err := io.WriteString(w, tw.String())
	return int64(n), err
}
