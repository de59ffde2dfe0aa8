package config

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gridcss/breakpoint"
)

func parseEntries(list []BreakpointConfig) ([]breakpoint.Breakpoint, error) {
	var (
		entries = make([]breakpoint.Breakpoint, 0, len(list))
		errs    error
	)
	for _, e := range list {
		l, err := breakpoint.ParseLength(e.Value)
		if err != nil {
			errs = multierr.Append(errs, breakpoint.NewFatal(breakpoint.RuleInvalidLength, e.Name, "%v", err))
			continue
		}
		entries = append(entries, breakpoint.Breakpoint{Name: e.Name, Threshold: l})
	}
	return entries, errs
}

// Registries builds standard and HiDPI registries from configuration.
func (conf *BreakpointsConfig) Registries() (std, hidpi *breakpoint.Registry, err error) {
	stdEntries, err := parseEntries(conf.Standard)
	if err != nil {
		return nil, nil, fmt.Errorf("standard breakpoints: %w", err)
	}
	hidpiEntries, err := parseEntries(conf.HiDPI)
	if err != nil {
		return nil, nil, fmt.Errorf("hidpi breakpoints: %w", err)
	}

	base := conf.BaseFontSize
	if base <= 0 {
		base = breakpoint.DefaultBaseFontSize
	}
	if std, err = breakpoint.NewRegistry(stdEntries, breakpoint.WithBaseFontSize(base)); err != nil {
		return nil, nil, fmt.Errorf("standard breakpoints: %w", err)
	}
	if hidpi, err = breakpoint.NewHiDPIRegistry(hidpiEntries); err != nil {
		return nil, nil, fmt.Errorf("hidpi breakpoints: %w", err)
	}
	return std, hidpi, nil
}

// Prepare returns resolver configured with our breakpoints.
func (conf *BreakpointsConfig) Prepare(log *zap.Logger) (*breakpoint.Resolver, error) {
	std, hidpi, err := conf.Registries()
	if err != nil {
		return nil, err
	}
	r, err := breakpoint.NewResolver(std, hidpi,
		breakpoint.WithLogger(log),
		breakpoint.WithPrintBreakpoint(conf.Print),
		breakpoint.WithClasses(conf.Classes),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create breakpoint resolver: %w", err)
	}
	return r, nil
}
