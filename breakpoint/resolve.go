package breakpoint

import (
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"
)

const (
	// Max limit of a named range stays this far (0.02px / 16) under the
	// next breakpoint, precise enough for browser zoom without rounding
	// collisions.
	standardEpsilon = 0.00125
	// Web standard pixels per inch, 1dppx = 96dpi.
	stdWebDPI = 96
)

// Condition is a resolved media condition. Zero bounds are not emitted.
type Condition struct {
	Orientation string
	Min         float64 // ems or density ratio
	Max         float64
	HiDPI       bool
}

// IsEmpty reports condition that applies everywhere so no media wrapping is necessary.
func (c Condition) IsEmpty() bool {
	return c.Orientation == "" && c.Min <= 0 && c.Max <= 0
}

func (c Condition) String() string {
	if c.Orientation != "" {
		return "(orientation: " + c.Orientation + ")"
	}
	if c.HiDPI {
		// Engines disagree on syntax, so both are produced. Resolution is in
		// dpi rather than dppx for older engines.
		return joinNonEmpty(", ",
			joinBounds(c.Min, c.Max, "-webkit-min-device-pixel-ratio", "-webkit-max-device-pixel-ratio", ""),
			joinBounds(c.Min*stdWebDPI, c.Max*stdWebDPI, "min-resolution", "max-resolution", "dpi"),
		)
	}
	return joinBounds(c.Min, c.Max, "min-width", "max-width", "em")
}

func joinBounds(lo, hi float64, loName, hiName, unit string) string {
	var parts []string
	if lo > 0 {
		parts = append(parts, "("+loName+": "+FormatNumber(lo)+unit+")")
	}
	if hi > 0 {
		parts = append(parts, "("+hiName+": "+FormatNumber(hi)+unit+")")
	}
	return strings.Join(parts, " and ")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// Resolver translates references into media conditions using standard and
// HiDPI registries. It is immutable and could be shared.
type Resolver struct {
	log     *zap.Logger
	std     *Registry
	hidpi   *Registry
	print   string
	classes []string
}

// ResolverOption customizes resolver.
type ResolverOption func(*Resolver)

func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithPrintBreakpoint makes named breakpoints up to and including name
// apply to print media as well.
func WithPrintBreakpoint(name string) ResolverOption {
	return func(r *Resolver) {
		r.print = name
	}
}

// WithClasses limits default iteration to the listed breakpoints.
func WithClasses(names []string) ResolverOption {
	return func(r *Resolver) {
		r.classes = slices.Clone(names)
	}
}

// NewResolver creates resolver. hidpi may be nil.
func NewResolver(std, hidpi *Registry, opts ...ResolverOption) (*Resolver, error) {
	if std.Len() == 0 || std.Kind() != KindStandard {
		return nil, NewFatal(RuleEmptyRegistry, "", "resolver requires non empty standard registry")
	}
	if hidpi != nil && hidpi.Kind() != KindHiDPI {
		return nil, NewFatal(RuleEmptyRegistry, "", "resolver requires HiDPI registry of HiDPI kind")
	}

	r := &Resolver{log: zap.NewNop(), std: std, hidpi: hidpi}
	for _, setOpt := range opts {
		setOpt(r)
	}
	r.log = r.log.Named("breakpoint")

	var diags Diagnostics
	if r.print != "" && !std.Has(r.print) {
		diags = append(diags, NewFatal(RuleUnknownPrintBreakpoint, r.print, "print breakpoint is not defined in registry"))
	}
	for _, name := range r.classes {
		if !std.Has(name) {
			diags = append(diags, NewFatal(RuleUnknownBreakpoint, name, "class breakpoint is not defined in registry"))
		}
	}
	if len(r.classes) == 0 {
		r.classes = std.Names()
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Standard returns viewport width registry.
func (r *Resolver) Standard() *Registry {
	return r.std
}

// HiDPI returns pixel density registry, could be nil.
func (r *Resolver) HiDPI() *Registry {
	return r.hidpi
}

// Classes returns breakpoints iterated by default.
func (r *Resolver) Classes() []string {
	return slices.Clone(r.classes)
}

// PrintBreakpoint returns name of the largest breakpoint applied to print media, if any.
func (r *Resolver) PrintBreakpoint() string {
	return r.print
}

// Resolve translates reference into media condition. Problems are logged
// when they are found and returned so callers could decide to abort. Any
// returned warning leaves condition in a safe state: unknown names resolve
// as zero threshold, "only" on unnamed reference yields empty condition.
func (r *Resolver) Resolve(ref Reference) (Condition, Diagnostics) {
	cond, diags := r.resolve(ref)
	diags.Log(r.log)
	return cond, diags
}

func (r *Resolver) resolve(ref Reference) (Condition, Diagnostics) {
	if ref.Kind == RefOrientation {
		return Condition{Orientation: ref.Name}, nil
	}

	var (
		diags   Diagnostics
		reg     = r.std
		value   float64
		next    float64
		hasNext bool
		named   bool
	)

	switch ref.Kind {
	case RefName:
		if bp, ok := r.std.Lookup(ref.Name); ok {
			named, value = true, bp.normalized
			if n, ok := r.std.Next(ref.Name); ok {
				next, hasNext = n.normalized, true
			}
		} else if bp, ok := r.hidpi.Lookup(ref.Name); ok {
			reg = r.hidpi
			named, value = true, bp.normalized
			if n, ok := r.hidpi.Next(ref.Name); ok {
				next, hasNext = n.normalized, true
			}
		} else {
			diags = append(diags, NewWarning(RuleUnknownBreakpoint, ref.Name, "breakpoint is not defined, using zero threshold"))
		}
	case RefLength:
		v, err := r.std.Normalize(ref.Length)
		if err != nil {
			diags = append(diags, NewFatal(RuleInvalidLength, ref.Length.String(), "%v", err))
			return Condition{}, diags
		}
		value = v
	}

	if !named && ref.Dir == Only {
		diags = append(diags, NewWarning(RuleOnlyRequiresName, ref.String(), "only named breakpoints can have an only range"))
		return Condition{}, diags
	}

	cond := Condition{HiDPI: reg.Kind() == KindHiDPI}
	if ref.Dir == Up || ref.Dir == Only {
		cond.Min = value
	}
	if ref.Dir == Down || ref.Dir == Only {
		switch {
		case !named:
			cond.Max = value
		case hasNext && cond.HiDPI:
			cond.Max = next - 1.0/stdWebDPI
		case hasNext:
			cond.Max = next - standardEpsilon
		}
	}
	cond.Min, cond.Max = math.Max(cond.Min, 0), math.Max(cond.Max, 0)
	return cond, diags
}

// Media returns complete media query for reference or empty string when no
// wrapping is necessary. Named breakpoints up to print breakpoint are
// applied to print media too.
func (r *Resolver) Media(ref Reference) (string, Diagnostics) {
	cond, diags := r.Resolve(ref)
	if cond.IsEmpty() {
		return "", diags
	}
	if r.printable(ref) {
		return "print, screen and " + cond.String(), diags
	}
	return "screen and " + cond.String(), diags
}

func (r *Resolver) printable(ref Reference) bool {
	if r.print == "" || ref.Kind != RefName || ref.Dir != Up {
		return false
	}
	i := r.std.Index(ref.Name)
	return i >= 0 && i <= r.std.Index(r.print)
}

const matchTolerance = 1e-9

// Match finds named standard reference producing given bounds (in ems).
// When several directions produce the same condition "up" wins, then "down".
func (r *Resolver) Match(lo, hi float64) (Reference, bool) {
	for _, dir := range []Direction{Up, Down, Only} {
		for _, name := range r.std.Names() {
			ref := Reference{Kind: RefName, Name: name, Dir: dir}
			cond, _ := r.resolve(ref)
			if math.Abs(cond.Min-lo) < matchTolerance && math.Abs(cond.Max-hi) < matchTolerance {
				return ref, true
			}
		}
	}
	return Reference{}, false
}
