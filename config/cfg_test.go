package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
	"go.uber.org/zap/zaptest"

	"gridcss/breakpoint"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := writeConfig(t, `version: 1
breakpoints:
  base_font_size: 10
  standard:
    - name: phone
      value: 0
    - name: tablet
      value: 600px
    - name: desktop
      value: 90em
  hidpi: []
  print: tablet
  classes: [phone, desktop]
layout:
  columns: 16
logging:
  console:
    level: normal
  file:
    level: debug
    destination: /tmp/test.log
    mode: append
reporting:
  destination: /tmp/test-report.zip
`)

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Breakpoints.BaseFontSize != 10 {
		t.Errorf("BaseFontSize = %v, want 10", cfg.Breakpoints.BaseFontSize)
	}
	if len(cfg.Breakpoints.Standard) != 3 {
		t.Fatalf("Standard length = %d, want 3", len(cfg.Breakpoints.Standard))
	}
	if cfg.Breakpoints.Standard[2].Value != "90em" {
		t.Errorf("Standard[2].Value = %q, want 90em", cfg.Breakpoints.Standard[2].Value)
	}
	if len(cfg.Breakpoints.HiDPI) != 0 {
		t.Errorf("HiDPI length = %d, want 0", len(cfg.Breakpoints.HiDPI))
	}
	if cfg.Layout.Columns != 16 {
		t.Errorf("Columns = %d, want 16", cfg.Layout.Columns)
	}
	// not mentioned in file, default must survive
	if cfg.Layout.SerializeSelector != ".gridcss-mq" {
		t.Errorf("SerializeSelector = %q, want default", cfg.Layout.SerializeSelector)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("FileLogger.Mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `version: 1
breakpoints:
  base_font_size: 16
  invalid indent
`)

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	configPath := writeConfig(t, `version: 1
unknown_field: value
layout:
  columns: 12
`)

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"version", "version: 2\n"},
		{"columns", "version: 1\nlayout:\n  columns: 0\n"},
		{"base font size", "version: 1\nbreakpoints:\n  base_font_size: -1\n"},
		{"empty standard", "version: 1\nbreakpoints:\n  standard: []\n"},
		{"unnamed breakpoint", "version: 1\nbreakpoints:\n  standard:\n    - value: 0\n"},
		{"unknown print", "version: 1\nbreakpoints:\n  print: huge\n"},
		{"unknown class", "version: 1\nbreakpoints:\n  classes: [small, huge]\n"},
		{"log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			if err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	// Verify we can load it back
	cfg2 := &Config{}
	if _, err = unmarshalConfig(data, cfg2, true); err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
	if len(cfg2.Breakpoints.Standard) != len(cfg.Breakpoints.Standard) {
		t.Errorf("Standard breakpoints mismatch after dump/load: got %d, want %d",
			len(cfg2.Breakpoints.Standard), len(cfg.Breakpoints.Standard))
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	data := []byte("version: 99\n")
	cfg := &Config{}

	_, err := unmarshalConfig(data, cfg, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}

	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error (errors.Unwrap non-nil), got bare error: %v", err)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	bp := cfg.Breakpoints
	if bp.BaseFontSize != 16 {
		t.Errorf("BaseFontSize = %v, want 16", bp.BaseFontSize)
	}
	want := []string{"small", "medium", "large", "xlarge", "xxlarge"}
	if len(bp.Standard) != len(want) {
		t.Fatalf("Standard length = %d, want %d", len(bp.Standard), len(want))
	}
	for i, name := range want {
		if bp.Standard[i].Name != name {
			t.Errorf("Standard[%d] = %q, want %q", i, bp.Standard[i].Name, name)
		}
	}
	if bp.Print != "large" {
		t.Errorf("Print = %q, want large", bp.Print)
	}
	if cfg.Layout.Columns != 12 {
		t.Errorf("Columns = %d, want 12", cfg.Layout.Columns)
	}
}

func TestBreakpointsConfig_Prepare(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	r, err := cfg.Breakpoints.Prepare(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if got := r.Standard().Serialize(); got != "small=0em&medium=40em&large=64em&xlarge=75em&xxlarge=90em" {
		t.Errorf("Serialize() = %q", got)
	}
	if r.HiDPI().Len() != 5 {
		t.Errorf("HiDPI().Len() = %d, want 5", r.HiDPI().Len())
	}
	if got := r.Classes(); len(got) != 3 || got[2] != "large" {
		t.Errorf("Classes() = %v", got)
	}
	if q, _ := r.Media(breakpoint.Named("medium")); q != "print, screen and (min-width: 40em)" {
		t.Errorf("Media(medium) = %q", q)
	}
}

func TestBreakpointsConfig_PrepareErrors(t *testing.T) {
	tests := []struct {
		name string
		conf BreakpointsConfig
		rule breakpoint.Rule
	}{
		{
			name: "bad length",
			conf: BreakpointsConfig{Standard: []BreakpointConfig{{Name: "small", Value: "wide"}}},
			rule: breakpoint.RuleInvalidLength,
		},
		{
			name: "no zero",
			conf: BreakpointsConfig{Standard: []BreakpointConfig{{Name: "small", Value: "10px"}}},
			rule: breakpoint.RuleZeroBreakpoint,
		},
		{
			name: "order",
			conf: BreakpointsConfig{Standard: []BreakpointConfig{
				{Name: "small", Value: "0"}, {Name: "large", Value: "64em"}, {Name: "medium", Value: "40em"},
			}},
			rule: breakpoint.RuleThresholdOrder,
		},
		{
			name: "hidpi order",
			conf: BreakpointsConfig{
				Standard: []BreakpointConfig{{Name: "small", Value: "0"}},
				HiDPI:    []BreakpointConfig{{Name: "hidpi-2", Value: "2"}, {Name: "hidpi-1", Value: "1"}},
			},
			rule: breakpoint.RuleThresholdOrder,
		},
		{
			name: "print",
			conf: BreakpointsConfig{Standard: []BreakpointConfig{{Name: "small", Value: "0"}}, Print: "medium"},
			rule: breakpoint.RuleUnknownPrintBreakpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.conf.Prepare(zaptest.NewLogger(t))
			if err == nil {
				t.Fatal("expected error")
			}
			d, ok := breakpoint.AsDiagnostic(err)
			if !ok {
				t.Fatalf("expected diagnostic in error chain, got %v", err)
			}
			if d.Rule != tt.rule {
				t.Errorf("Rule = %s, want %s", d.Rule, tt.rule)
			}
		})
	}
}
