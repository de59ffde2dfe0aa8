package layout

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"gridcss/breakpoint"
	"gridcss/css"
	"gridcss/responsive"
)

// SerializeProperty holds serialized registry in the generated rule.
const SerializeProperty = "font-family"

// Builder generates stylesheets from layouts.
type Builder struct {
	log       *zap.Logger
	res       *breakpoint.Resolver
	columns   int
	serialize string
}

type BuilderOption func(*Builder)

func WithLogger(log *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithColumns sets denominator for fraction() without one.
func WithColumns(n int) BuilderOption {
	return func(b *Builder) {
		b.columns = n
	}
}

// WithSerializeSelector adds rule carrying serialized breakpoints.
func WithSerializeSelector(sel string) BuilderOption {
	return func(b *Builder) {
		b.serialize = sel
	}
}

func NewBuilder(res *breakpoint.Resolver, opts ...BuilderOption) *Builder {
	b := &Builder{log: zap.NewNop(), res: res}
	for _, setOpt := range opts {
		setOpt(b)
	}
	b.log = b.log.Named("layout")
	return b
}

// Build generates stylesheet. Scalar properties and values of the zero
// breakpoint go to top level, every other breakpoint gets single @media
// block with properties whose effective value changed. Diagnostics are
// returned even on success, fatal ones make the error non nil.
func (b *Builder) Build(l *Layout) (*css.Stylesheet, breakpoint.Diagnostics, error) {
	std := b.res.Standard()
	diags := l.Check(std)
	diags.Log(b.log)

	columns := b.columns
	if l.Columns > 0 {
		columns = l.Columns
	}

	sheet := &css.Stylesheet{}
	if b.serialize != "" {
		r := css.NewRule(b.serialize)
		r.Set(SerializeProperty, css.Quote(std.Serialize()))
		sheet.AddRule(r)
	}

	scope := breakpoint.NewScope()
	if err := b.cascade(sheet, scope, l.Rules, columns, &diags); err != nil {
		return nil, diags, err
	}
	for _, rule := range l.Rules {
		if len(rule.Media) == 0 {
			continue
		}
		if err := b.explicit(sheet, scope, rule, columns, &diags); err != nil {
			return nil, diags, err
		}
	}

	if err := diags.Err(); err != nil {
		return nil, diags, err
	}
	b.log.Debug("Stylesheet generated", zap.Int("items", len(sheet.Items)), zap.Int("warnings", len(diags.Warnings())))
	return sheet, diags, nil
}

// ascending orders names as registry does, unknown names go last. Cascade
// compares every breakpoint with the previous one, so order matters.
func ascending(std *breakpoint.Registry, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	rank := func(name string) int {
		if i := std.Index(name); i >= 0 {
			return i
		}
		return std.Len()
	}
	out := slices.Clone(names)
	slices.SortStableFunc(out, func(a, b string) int {
		return rank(a) - rank(b)
	})
	return out
}

// cascade emits rules without explicit media references grouping output of
// all rules by breakpoint.
func (b *Builder) cascade(sheet *css.Stylesheet, scope *breakpoint.Scope, rules []Rule, columns int, diags *breakpoint.Diagnostics) error {
	defer scope.SetAutoWrap(false)()

	var (
		std    = b.res.Standard()
		zero   = std.Zero().Name
		blocks = make(map[string][]css.Rule)
		top    []css.Rule
	)
	for _, rule := range rules {
		if len(rule.Media) > 0 {
			continue
		}

		base := css.NewRule(rule.Selector)
		prev := make(map[string]string)
		mapped := make([]string, 0, len(rule.Properties))
		for _, name := range slices.Sorted(maps.Keys(rule.Properties)) {
			v := rule.Properties[name]
			if !v.IsScalar() {
				mapped = append(mapped, name)
				continue
			}
			val, err := expand(v.ScalarValue(), columns)
			if err != nil {
				return b.fail(diags, rule.Selector, name, err)
			}
			base.Set(name, val)
		}

		ds, err := b.res.Each(scope, breakpoint.EachOptions{Names: ascending(std, rule.Breakpoints)}, func(blk breakpoint.Block) error {
			r := css.NewRule(rule.Selector)
			if blk.Name == zero {
				r = base
			}
			for _, name := range mapped {
				raw, ok := rule.Properties[name].Current(std, scope)
				if !ok {
					continue
				}
				val, err := expand(raw, columns)
				if err != nil {
					return b.fail(diags, rule.Selector, name, err)
				}
				if p, seen := prev[name]; seen && p == val {
					continue
				}
				prev[name] = val
				r.Set(name, val)
			}
			if blk.Name != zero && len(r.Properties) > 0 {
				blocks[blk.Name] = append(blocks[blk.Name], r)
			}
			return nil
		})
		*diags = append(*diags, ds...)
		if err != nil {
			return err
		}
		if len(base.Properties) > 0 {
			top = append(top, base)
		}
	}

	sheet.AddMedia("", top...)
	for _, name := range std.Names() {
		if len(blocks[name]) == 0 {
			continue
		}
		q, ds := b.res.Media(breakpoint.Named(name))
		*diags = append(*diags, ds...)
		sheet.AddMedia(q, blocks[name]...)
	}
	return nil
}

// explicit emits rule once per listed reference, inside the reference's
// media query.
func (b *Builder) explicit(sheet *css.Stylesheet, scope *breakpoint.Scope, rule Rule, columns int, diags *breakpoint.Diagnostics) error {
	refs := make([]breakpoint.Reference, 0, len(rule.Media))
	for _, m := range rule.Media {
		ref, err := breakpoint.ParseReference(m)
		if err != nil {
			return fmt.Errorf("rule %q: %w", rule.Selector, err)
		}
		refs = append(refs, ref)
	}

	std := b.res.Standard()
	ds, err := b.res.Breakpoint(scope, refs, func(blk breakpoint.Block) error {
		r := css.NewRule(rule.Selector)
		for _, name := range slices.Sorted(maps.Keys(rule.Properties)) {
			raw, ok := rule.Properties[name].Current(std, scope)
			if !ok {
				continue
			}
			val, err := expand(raw, columns)
			if err != nil {
				return b.fail(diags, rule.Selector, name, err)
			}
			r.Set(name, val)
		}
		if len(r.Properties) > 0 {
			sheet.AddMedia(blk.Query, r)
		}
		return nil
	})
	*diags = append(*diags, ds...)
	return err
}

// fail records fatal diagnostic carried by err, if any.
func (b *Builder) fail(diags *breakpoint.Diagnostics, selector, property string, err error) error {
	if d, ok := breakpoint.AsDiagnostic(err); ok {
		*diags = append(*diags, d)
		breakpoint.Diagnostics{d}.Log(b.log)
	}
	return fmt.Errorf("rule %q, property %q: %w", selector, property, err)
}

// expand replaces fraction() calls with percentages, columns is the
// default denominator.
func expand(value string, columns int) (string, error) {
	if !strings.Contains(strings.ToLower(value), "fraction(") {
		return value, nil
	}

	var (
		sb    strings.Builder
		l     = tcss.NewLexer(parse.NewInputString(value))
		inner *strings.Builder
		depth int
	)
	for {
		tt, data := l.Next()
		if tt == tcss.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("unable to parse value %q: %w", value, err)
			}
			break
		}

		if inner != nil {
			switch tt {
			case tcss.LeftParenthesisToken, tcss.FunctionToken:
				depth++
			case tcss.RightParenthesisToken:
				if depth == 0 {
					f, err := responsive.ParseFraction(inner.String())
					if err != nil {
						return "", err
					}
					p, err := f.Percentage(float64(columns))
					if err != nil {
						return "", err
					}
					sb.WriteString(responsive.FormatPercentage(p))
					inner = nil
					continue
				}
				depth--
			}
			inner.Write(data)
			continue
		}

		if tt == tcss.FunctionToken && strings.EqualFold(string(data), "fraction(") {
			inner, depth = &strings.Builder{}, 0
			continue
		}
		sb.Write(data)
	}
	if inner != nil {
		return "", fmt.Errorf("unterminated fraction() in %q", value)
	}
	return sb.String(), nil
}
