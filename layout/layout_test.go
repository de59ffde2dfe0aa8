package layout

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"gridcss/config"
	"gridcss/state"
)

func TestParse(t *testing.T) {
	l := mustParse(t, `
columns: 16
rules:
  - selector: .container
    breakpoints: [small, large]
    properties:
      padding: { small: 1rem, large: 2rem }
      max-width: 75rem
`)

	if l.Columns != 16 {
		t.Errorf("Columns = %d, want 16", l.Columns)
	}
	if len(l.Rules) != 1 {
		t.Fatalf("Rules length = %d, want 1", len(l.Rules))
	}
	r := l.Rules[0]
	if r.Selector != ".container" || len(r.Breakpoints) != 2 {
		t.Errorf("unexpected rule: %+v", r)
	}
	if !r.Properties["max-width"].IsScalar() {
		t.Error("max-width should be scalar")
	}
	if got := r.Properties["padding"].Keys(); len(got) != 2 || got[0] != "small" || got[1] != "large" {
		t.Errorf("padding keys = %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", "rules:\n  - selector: .a\n    colour: red\n"},
		{"no selector", "rules:\n  - properties: { color: red }\n"},
		{"negative columns", "columns: -1\nrules: []\n"},
		{"media and breakpoints", "rules:\n  - selector: .a\n    media: [medium]\n    breakpoints: [small]\n"},
		{"malformed", "rules: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func newEnv(t *testing.T) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	env := &state.LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t)}
	if err := env.PrepareResolver(); err != nil {
		t.Fatalf("PrepareResolver() error = %v", err)
	}
	return env
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(src, []byte(`
rules:
  - selector: .cell
    properties:
      width: { small: fraction(12), medium: fraction(6) }
`), 0644); err != nil {
		t.Fatalf("failed to write layout: %v", err)
	}
	dst := filepath.Join(dir, "out", "site.css")

	env := newEnv(t)
	if err := process(context.Background(), env, src, dst, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	got := string(data)
	for _, want := range []string{
		`.gridcss-mq {` + "\n" + `  font-family: "small=0em&medium=40em&large=64em&xlarge=75em&xxlarge=90em";`,
		".cell {\n  width: 100%;\n}",
		"@media print, screen and (min-width: 40em) {\n  .cell {\n    width: 50%;\n  }\n}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("result does not contain %q:\n%s", want, got)
		}
	}

	// without overwrite existing destination is an error
	if err := process(context.Background(), env, src, dst, env.Log); err == nil {
		t.Error("expected error for existing destination")
	}
	env.Overwrite = true
	if err := process(context.Background(), env, src, dst, env.Log); err != nil {
		t.Errorf("process() with overwrite error = %v", err)
	}
}

func TestProcess_Cancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(src, []byte("rules: []\n"), 0644); err != nil {
		t.Fatalf("failed to write layout: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := newEnv(t)
	if err := process(ctx, env, src, filepath.Join(dir, "site.css"), env.Log); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestOutputName(t *testing.T) {
	if got := outputName("/a/b/site.layout.yaml"); got != "site.layout.css" {
		t.Errorf("outputName() = %q", got)
	}
}
