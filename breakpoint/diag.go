package breakpoint

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Severity tells embedding tools whether a diagnostic must abort processing.
type Severity int

const (
	SeverityWarning Severity = iota // degraded to a safe default, processing continues
	SeverityFatal                   // processing cannot continue
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Rule identifies which check produced a diagnostic.
type Rule string

const (
	RuleEmptyRegistry          Rule = "empty-registry"
	RuleZeroBreakpoint         Rule = "zero-breakpoint"
	RuleThresholdOrder         Rule = "threshold-order"
	RuleDuplicateName          Rule = "duplicate-name"
	RuleInvalidName            Rule = "invalid-name"
	RuleInvalidLength          Rule = "invalid-length"
	RuleUnknownPrintBreakpoint Rule = "unknown-print-breakpoint"
	RuleUnknownBreakpoint      Rule = "unknown-breakpoint"
	RuleOnlyRequiresName       Rule = "only-requires-name"
	RuleMissingDenominator     Rule = "missing-denominator"
	RuleMissingValue           Rule = "missing-value"
)

// Diagnostic is a single finding. It implements error so fatal diagnostics
// can travel through regular error returns and be recovered with errors.As.
type Diagnostic struct {
	Severity Severity
	Rule     Rule
	Subject  string // offending input as given by the caller
	Message  string
}

func (d *Diagnostic) Error() string {
	if d.Subject == "" {
		return fmt.Sprintf("%s: %s", d.Rule, d.Message)
	}
	return fmt.Sprintf("%s: %s (%q)", d.Rule, d.Message, d.Subject)
}

// NewFatal creates fatal diagnostic.
func NewFatal(rule Rule, subject, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityFatal, Rule: rule, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// NewWarning creates non fatal diagnostic.
func NewWarning(rule Rule, subject, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: SeverityWarning, Rule: rule, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// AsDiagnostic extracts first diagnostic from err, combined errors included.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Diagnostics is an ordered list of findings of a single operation.
type Diagnostics []*Diagnostic

func (ds Diagnostics) HasFatal() bool {
	for _, d := range ds {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Warnings returns non fatal part of the list.
func (ds Diagnostics) Warnings() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Err combines all fatal diagnostics into single error, nil if there are none.
func (ds Diagnostics) Err() error {
	var err error
	for _, d := range ds {
		if d.Severity == SeverityFatal {
			err = multierr.Append(err, d)
		}
	}
	return err
}

// Log reports every diagnostic: warnings at warn level, fatal ones at error level.
func (ds Diagnostics) Log(log *zap.Logger) {
	for _, d := range ds {
		fields := []zap.Field{zap.String("rule", string(d.Rule)), zap.String("subject", d.Subject)}
		if d.Severity == SeverityFatal {
			log.Error(d.Message, fields...)
		} else {
			log.Warn(d.Message, fields...)
		}
	}
}
