package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// treeWriter builds indented human readable report.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{
		w: &strings.Builder{},
	}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// field writes label with quoted value, empty value is left as is.
func (tw treeWriter) field(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// list writes label followed by comma separated items.
func (tw treeWriter) list(depth int, label string, items []string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(strings.Join(items, ", "))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
