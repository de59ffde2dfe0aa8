package breakpoint

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// DefaultBaseFontSize is the pixel size of 1em in media queries. Media
// query ems are relative to the browser default, not to the document root.
const DefaultBaseFontSize = 16

// Kind of the registry.
type Kind int

const (
	KindStandard Kind = iota // viewport width thresholds
	KindHiDPI                // pixel density ratios
)

func (k Kind) String() string {
	if k == KindHiDPI {
		return "hidpi"
	}
	return "standard"
}

// Breakpoint is a named threshold.
type Breakpoint struct {
	Name      string
	Threshold Length

	normalized float64
}

// Normalized returns threshold in ems for standard breakpoints and as
// unitless ratio for HiDPI ones. Only set for registry members.
func (b Breakpoint) Normalized() float64 {
	return b.normalized
}

// Registry is an ordered immutable set of breakpoints.
type Registry struct {
	kind    Kind
	base    float64
	entries []Breakpoint
	index   map[string]int
}

// RegistryOption customizes standard registry.
type RegistryOption func(*Registry)

// WithBaseFontSize sets pixel size of 1em used to normalize px thresholds.
func WithBaseFontSize(px float64) RegistryOption {
	return func(r *Registry) {
		if px > 0 {
			r.base = px
		}
	}
}

// NewRegistry validates entries and builds standard (viewport width)
// registry. The first entry must have zero threshold and thresholds must
// be strictly increasing. All problems found are reported together as
// fatal diagnostics.
func NewRegistry(entries []Breakpoint, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{kind: KindStandard, base: DefaultBaseFontSize}
	for _, setOpt := range opts {
		setOpt(r)
	}
	if len(entries) == 0 {
		return nil, NewFatal(RuleEmptyRegistry, "", "breakpoint registry must have at least one entry")
	}
	diags := r.fill(entries)
	if len(r.entries) > 0 && r.entries[0].normalized != 0 {
		diags = append(diags, NewFatal(RuleZeroBreakpoint, r.entries[0].Name,
			"first breakpoint must have a threshold of 0, got %s", r.entries[0].Threshold))
	}
	for i := 1; i < len(r.entries); i++ {
		if r.entries[i].normalized <= r.entries[i-1].normalized {
			diags = append(diags, NewFatal(RuleThresholdOrder, r.entries[i].Name,
				"threshold %s must be greater than %s of %q", r.entries[i].Threshold, r.entries[i-1].Threshold, r.entries[i-1].Name))
		}
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewHiDPIRegistry builds pixel density registry. It may be empty. Ratios
// must be positive and ascending, aliases sharing a ratio are allowed.
func NewHiDPIRegistry(entries []Breakpoint) (*Registry, error) {
	r := &Registry{kind: KindHiDPI, base: DefaultBaseFontSize}
	diags := r.fill(entries)
	for i, bp := range r.entries {
		if bp.normalized <= 0 {
			diags = append(diags, NewFatal(RuleInvalidLength, bp.Name, "pixel density ratio must be positive, got %s", bp.Threshold))
		}
		if i > 0 && bp.normalized < r.entries[i-1].normalized {
			diags = append(diags, NewFatal(RuleThresholdOrder, bp.Name,
				"ratio %s must not be less than %s of %q", bp.Threshold, r.entries[i-1].Threshold, r.entries[i-1].Name))
		}
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) fill(entries []Breakpoint) Diagnostics {
	var diags Diagnostics

	r.entries = make([]Breakpoint, 0, len(entries))
	r.index = make(map[string]int, len(entries))
	for _, bp := range entries {
		if !slug.IsSlug(bp.Name) {
			diags = append(diags, NewFatal(RuleInvalidName, bp.Name, "breakpoint name must be lower case letters, digits and dashes"))
			continue
		}
		if _, exists := r.index[bp.Name]; exists {
			diags = append(diags, NewFatal(RuleDuplicateName, bp.Name, "breakpoint is defined more than once"))
			continue
		}
		v, err := r.Normalize(bp.Threshold)
		if err != nil {
			diags = append(diags, NewFatal(RuleInvalidLength, bp.Name, "%v", err))
			continue
		}
		bp.normalized = v
		r.index[bp.Name] = len(r.entries)
		r.entries = append(r.entries, bp)
	}
	return diags
}

// Kind returns registry kind.
func (r *Registry) Kind() Kind {
	return r.kind
}

// BaseFontSize returns pixel size of 1em.
func (r *Registry) BaseFontSize() float64 {
	return r.base
}

// Len returns number of breakpoints, nil registry is empty.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Names returns breakpoint names in registry order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for _, bp := range r.entries {
		names = append(names, bp.Name)
	}
	return names
}

// Entries returns copy of registry content in order.
func (r *Registry) Entries() []Breakpoint {
	if r == nil {
		return nil
	}
	return append([]Breakpoint(nil), r.entries...)
}

func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[name]
	return ok
}

// Lookup returns breakpoint by name.
func (r *Registry) Lookup(name string) (Breakpoint, bool) {
	if r == nil {
		return Breakpoint{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return Breakpoint{}, false
	}
	return r.entries[i], true
}

// Index returns position of the named breakpoint or -1.
func (r *Registry) Index(name string) int {
	if r == nil {
		return -1
	}
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Zero returns the zero breakpoint (first entry).
func (r *Registry) Zero() Breakpoint {
	if r.Len() == 0 {
		return Breakpoint{}
	}
	return r.entries[0]
}

// Next returns breakpoint with the smallest threshold strictly greater than
// threshold of the named one. There is none for the largest breakpoint.
func (r *Registry) Next(name string) (Breakpoint, bool) {
	cur, ok := r.Lookup(name)
	if !ok {
		return Breakpoint{}, false
	}
	var (
		next  Breakpoint
		found bool
	)
	for _, bp := range r.entries {
		if bp.normalized > cur.normalized && (!found || bp.normalized < next.normalized) {
			next, found = bp, true
		}
	}
	return next, found
}

// Below returns names of all breakpoints preceding the named one.
func (r *Registry) Below(name string) []string {
	i := r.Index(name)
	if i < 0 {
		return nil
	}
	return r.Names()[:i]
}

// Nearest snaps length to the largest breakpoint whose threshold does not
// exceed it, zero breakpoint when none does.
func (r *Registry) Nearest(l Length) (Breakpoint, error) {
	v, err := r.Normalize(l)
	if err != nil {
		return Breakpoint{}, err
	}
	nearest := r.Zero()
	for _, bp := range r.entries {
		if bp.normalized <= v {
			nearest = bp
		}
	}
	return nearest, nil
}

// Normalize converts length to registry units: ems for standard registry
// (unitless values are pixels), plain ratio for HiDPI one.
func (r *Registry) Normalize(l Length) (float64, error) {
	switch r.kind {
	case KindHiDPI:
		switch l.Unit {
		case "", "x", "dppx":
			return l.Value, nil
		}
	default:
		switch l.Unit {
		case "", "px":
			return l.Value / r.base, nil
		case "em", "rem":
			return l.Value, nil
		}
	}
	return 0, fmt.Errorf("unsupported unit %q for %s breakpoint", l.Unit, r.kind)
}

func (r *Registry) unit() string {
	if r.kind == KindHiDPI {
		return ""
	}
	return "em"
}

// Serialize encodes registry as "name1=value1em&name2=value2em" for runtime
// consumers reading compiled stylesheet.
func (r *Registry) Serialize() string {
	if r.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for _, bp := range r.entries {
		sb.WriteString(bp.Name)
		sb.WriteByte('=')
		sb.WriteString(FormatNumber(bp.normalized))
		sb.WriteString(r.unit())
		sb.WriteByte('&')
	}
	return strings.TrimSuffix(sb.String(), "&")
}

// ParseSerialized decodes output of Serialize.
func ParseSerialized(s string) ([]Breakpoint, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return nil, nil
	}
	var out []Breakpoint
	for pair := range strings.SplitSeq(s, "&") {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("malformed breakpoint pair %q", pair)
		}
		l, err := ParseLength(value)
		if err != nil {
			return nil, fmt.Errorf("malformed breakpoint %q: %w", name, err)
		}
		out = append(out, Breakpoint{Name: name, Threshold: l})
	}
	return out, nil
}
