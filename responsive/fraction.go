package responsive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"gridcss/breakpoint"
)

// Fraction is a part of a whole, denominator could be omitted ("4" of
// configured columns).
type Fraction struct {
	Numerator   float64
	Denominator float64 // 0 when not given
}

func (f Fraction) String() string {
	if f.Denominator == 0 {
		return breakpoint.FormatNumber(f.Numerator)
	}
	return breakpoint.FormatNumber(f.Numerator) + "/" + breakpoint.FormatNumber(f.Denominator)
}

// ParseFraction accepts "1/3", "1 of 3" and "4".
func ParseFraction(s string) (Fraction, error) {
	var parts []string

	l := css.NewLexer(parse.NewInputString(s))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && err != io.EOF {
				return Fraction{}, fmt.Errorf("unable to parse fraction %q: %w", s, err)
			}
			break
		}
		switch tt {
		case css.WhitespaceToken:
			continue
		case css.NumberToken:
			parts = append(parts, string(data))
		case css.DelimToken, css.IdentToken:
			if d := strings.ToLower(string(data)); d == "/" || d == "of" {
				parts = append(parts, "/")
				continue
			}
			return Fraction{}, fmt.Errorf("malformed fraction %q", s)
		default:
			return Fraction{}, fmt.Errorf("malformed fraction %q", s)
		}
	}

	var (
		f   Fraction
		err error
	)
	switch {
	case len(parts) == 1 && parts[0] != "/":
		f.Numerator, err = strconv.ParseFloat(parts[0], 64)
	case len(parts) == 3 && parts[0] != "/" && parts[1] == "/" && parts[2] != "/":
		if f.Numerator, err = strconv.ParseFloat(parts[0], 64); err == nil {
			f.Denominator, err = strconv.ParseFloat(parts[2], 64)
		}
		if err == nil && f.Denominator == 0 {
			err = fmt.Errorf("zero denominator")
		}
	default:
		return Fraction{}, fmt.Errorf("malformed fraction %q", s)
	}
	if err != nil {
		return Fraction{}, fmt.Errorf("malformed fraction %q: %w", s, err)
	}
	return f, nil
}

// Percentage converts fraction to percents using own denominator or
// fallback one. Without any denominator the result is fatal
// missing-denominator diagnostic.
func (f Fraction) Percentage(fallback float64) (float64, error) {
	d := f.Denominator
	if d == 0 {
		d = fallback
	}
	if d <= 0 {
		return 0, breakpoint.NewFatal(breakpoint.RuleMissingDenominator, f.String(), "no denominator given for fraction and none could be inferred")
	}
	return f.Numerator / d * 100, nil
}

// FormatPercentage prints percentage value with unit.
func FormatPercentage(p float64) string {
	return breakpoint.FormatNumber(p) + "%"
}
