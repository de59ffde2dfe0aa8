package css

import (
	"io"
	"maps"
	"slices"
	"strings"
)

// Quote returns s as CSS double quoted string, backslashes and quotes escaped.
func Quote(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	b.WriteByte('"')
	for _, r := range s {
		if r == '\\' || r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// sheetWriter counts written bytes and remembers first error, later writes
// are skipped.
type sheetWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (sw *sheetWriter) put(parts ...string) {
	for _, p := range parts {
		if sw.err != nil {
			return
		}
		var n int
		n, sw.err = io.WriteString(sw.w, p)
		sw.n += int64(n)
	}
}

func (sw *sheetWriter) rule(r *Rule, indent string) {
	sw.put(indent, r.Selector, " {\n")
	// sorted for stable output
	for _, name := range slices.Sorted(maps.Keys(r.Properties)) {
		sw.put(indent, "  ", name, ": ", r.Properties[name].Raw, ";\n")
	}
	sw.put(indent, "}\n")
}

func (sw *sheetWriter) media(mb *MediaBlock) {
	sw.put("@media ", mb.Query.Raw, " {\n")
	for i := range mb.Rules {
		if i > 0 {
			sw.put("\n")
		}
		sw.rule(&mb.Rules[i], "  ")
	}
	sw.put("}\n")
}

// WriteTo writes stylesheet in item order, items separated by blank lines.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	sw := &sheetWriter{w: w}
	for i, item := range s.Items {
		if i > 0 {
			sw.put("\n")
		}
		switch {
		case item.MediaBlock != nil:
			sw.media(item.MediaBlock)
		case item.Rule != nil:
			sw.rule(item.Rule, "")
		}
	}
	return sw.n, sw.err
}

func (s *Stylesheet) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}
