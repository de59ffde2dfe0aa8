package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	BreakpointConfig struct {
		Name  string `yaml:"name" validate:"required"`
		Value string `yaml:"value" validate:"required"`
	}

	BreakpointsConfig struct {
		BaseFontSize float64            `yaml:"base_font_size" validate:"gt=0"`
		Standard     []BreakpointConfig `yaml:"standard" validate:"required,min=1,dive"`
		HiDPI        []BreakpointConfig `yaml:"hidpi" validate:"dive"`
		Print        string             `yaml:"print,omitempty"`
		Classes      []string           `yaml:"classes,omitempty" validate:"dive,required"`
	}

	LayoutConfig struct {
		Columns           int    `yaml:"columns" validate:"min=1"`
		SerializeSelector string `yaml:"serialize_selector,omitempty"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		Breakpoints BreakpointsConfig `yaml:"breakpoints"`
		Layout      LayoutConfig      `yaml:"layout"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

// checkBreakpointNames makes sure print and class breakpoints refer to
// configured standard breakpoints.
func checkBreakpointNames(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	names := make([]string, 0, len(cfg.Breakpoints.Standard))
	for _, bp := range cfg.Breakpoints.Standard {
		names = append(names, bp.Name)
	}
	if p := cfg.Breakpoints.Print; p != "" && !slices.Contains(names, p) {
		sl.ReportError(cfg.Breakpoints.Print, "Print", "print", "breakpoint_name", p)
	}
	for _, c := range cfg.Breakpoints.Classes {
		if !slices.Contains(names, c) {
			sl.ReportError(cfg.Breakpoints.Classes, "Classes", "classes", "breakpoint_name", c)
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkBreakpointNames)); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
