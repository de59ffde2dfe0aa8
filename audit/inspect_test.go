package audit

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"gridcss/breakpoint"
	"gridcss/config"
	"gridcss/css"
	"gridcss/state"
)

func testResolver(t *testing.T) *breakpoint.Resolver {
	t.Helper()
	std, err := breakpoint.NewRegistry([]breakpoint.Breakpoint{
		{Name: "small", Threshold: breakpoint.Px(0)},
		{Name: "medium", Threshold: breakpoint.Px(640)},
		{Name: "large", Threshold: breakpoint.Px(1024)},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	r, err := breakpoint.NewResolver(std, nil, breakpoint.WithPrintBreakpoint("large"))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

const compiled = `.gridcss-mq {
  font-family: "small=0em&medium=40em&large=64em";
}

.row10, .row2 {
  margin: 0;
}

@media print, screen and (min-width: 40em) {
  .b { width: 50%; }
  .a { width: 25%; }
}

@media screen and (min-width: 40em) and (max-width: 63.99875em) {
  .hero { height: 50vh; }
}

@media screen and (orientation: Landscape) {
  .hero { height: 80vh; }
}

@media screen and (min-width: 33em) {
  .odd { color: red; }
}

@media screen and (-webkit-min-device-pixel-ratio: 2), (min-resolution: 192dpi) {
  .logo { background: url(logo@2x.png); }
}
`

func TestInspector_Inspect(t *testing.T) {
	log := zaptest.NewLogger(t)
	sheet := css.NewParser(log).Parse([]byte(compiled))
	rpt := NewInspector(testResolver(t), ".gridcss-mq", log).Inspect(sheet)

	if got := strings.Join(rpt.TopLevel, " "); got != ".row2 .row10" {
		t.Errorf("TopLevel = %q, want natural order", got)
	}

	want := []Block{
		{Reference: "medium", Print: true, Selectors: []string{".a", ".b"}},
		{Reference: "medium only"},
		{Reference: "landscape"},
		{},
		{},
	}
	if len(rpt.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(rpt.Blocks), len(want))
	}
	for i, w := range want {
		b := rpt.Blocks[i]
		if b.Reference != w.Reference {
			t.Errorf("block %d (%s) reference = %q, want %q", i, b.Query, b.Reference, w.Reference)
		}
		if b.Print != w.Print {
			t.Errorf("block %d print = %v, want %v", i, b.Print, w.Print)
		}
		if w.Selectors != nil && strings.Join(b.Selectors, ",") != strings.Join(w.Selectors, ",") {
			t.Errorf("block %d selectors = %v, want %v", i, b.Selectors, w.Selectors)
		}
	}

	if len(rpt.Serialized) != 3 || rpt.Serialized[1].Name != "medium" || rpt.Serialized[1].Threshold.String() != "40em" {
		t.Errorf("Serialized = %v", rpt.Serialized)
	}
	if len(rpt.Mismatches) != 0 {
		t.Errorf("unexpected mismatches: %v", rpt.Mismatches)
	}
}

func TestInspector_Mismatches(t *testing.T) {
	sheet := css.NewParser(nil).Parse([]byte(`.gridcss-mq { font-family: "small=0em&medium=30em&huge=100em"; }`))
	rpt := NewInspector(testResolver(t), ".gridcss-mq", nil).Inspect(sheet)

	want := []string{
		"medium: compiled 30em, configured 640px",
		"huge: not configured",
		"large: missing from compiled stylesheet",
	}
	if strings.Join(rpt.Mismatches, "|") != strings.Join(want, "|") {
		t.Errorf("Mismatches = %q, want %q", rpt.Mismatches, want)
	}
	if len(rpt.TopLevel) != 0 {
		t.Errorf("serialized rule must not be listed as top level: %v", rpt.TopLevel)
	}
}

func TestInspector_BrokenSerialized(t *testing.T) {
	sheet := css.NewParser(nil).Parse([]byte(`.gridcss-mq { font-family: "small"; }
.gridcss-mq { color: red; }`))
	rpt := NewInspector(testResolver(t), ".gridcss-mq", nil).Inspect(sheet)

	if len(rpt.Warnings) != 2 {
		t.Errorf("Warnings = %v, want 2 entries", rpt.Warnings)
	}
	if rpt.Serialized != nil {
		t.Errorf("Serialized = %v, want nil", rpt.Serialized)
	}
}

func TestReport_WriteTo(t *testing.T) {
	rpt := &Report{
		TopLevel: []string{".a"},
		Blocks: []Block{
			{Query: "print, screen and (min-width: 40em)", Reference: "medium", Print: true, Selectors: []string{".b"}},
			{Query: "screen and (min-width: 33em)", Selectors: []string{".c"}},
		},
		Serialized: []breakpoint.Breakpoint{{Name: "small", Threshold: breakpoint.Em(0)}},
		Mismatches: []string{"large: missing from compiled stylesheet"},
	}

	var sb strings.Builder
	if _, err := rpt.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	want := `Top level rules: 1
  selectors: .a
Media blocks: 2
  Block[0]
    query: "print, screen and (min-width: 40em)"
    breakpoint: "medium"
    print: yes
    selectors: .b
  Block[1]
    query: "screen and (min-width: 33em)"
    breakpoint: <unmatched>
    selectors: .c
Serialized breakpoints: 1
  small = 0em
Mismatches: 1
  large: missing from compiled stylesheet
`
	if got := sb.String(); got != want {
		t.Errorf("WriteTo() =\n%s\nwant\n%s", got, want)
	}
}

func TestInspect_Output(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env := &state.LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t)}
	if err := env.PrepareResolver(); err != nil {
		t.Fatalf("PrepareResolver() error = %v", err)
	}

	var sb strings.Builder
	if err := inspect(env, []byte(compiled), "site.css", &sb, env.Log); err != nil {
		t.Fatalf("inspect() error = %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"Media blocks: 5\n",
		`    breakpoint: "medium"` + "\n    print: yes\n",
		"Mismatches: 2\n  xlarge: missing from compiled stylesheet\n  xxlarge: missing from compiled stylesheet\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}
