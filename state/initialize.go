package state

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// PrepareResolver builds breakpoint resolver from loaded configuration.
func (e *LocalEnv) PrepareResolver() error {
	if e.Cfg == nil {
		return errors.New("configuration is not loaded")
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	r, err := e.Cfg.Breakpoints.Prepare(log)
	if err != nil {
		return fmt.Errorf("unable to prepare breakpoints: %w", err)
	}
	e.Resolver = r
	log.Debug("Breakpoints prepared",
		zap.Strings("standard", r.Standard().Names()),
		zap.Strings("hidpi", r.HiDPI().Names()),
		zap.String("print", r.PrintBreakpoint()))
	return nil
}
