package breakpoint

import (
	"fmt"
	"io"
	"math"
	"strconv"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	stylesheet "gridcss/css"
)

// Length is a CSS number with optional unit as written in configuration or
// stylesheet source.
type Length struct {
	Value float64
	Unit  string // lower case: "", "px", "em", "rem", "dppx", "x"
}

func (l Length) String() string {
	return FormatNumber(l.Value) + l.Unit
}

// Px returns pixel length.
func Px(v float64) Length {
	return Length{Value: v, Unit: "px"}
}

// Em returns em length.
func Em(v float64) Length {
	return Length{Value: v, Unit: "em"}
}

// FormatNumber prints v the way stylesheet compilers do: at most 10
// fractional digits, no trailing zeros, no exponent.
func FormatNumber(v float64) string {
	r := math.Round(v*1e10) / 1e10
	if r == 0 {
		// avoid "-0"
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// ParseLength parses a single CSS number or dimension, e.g. "0", "640px", "40em", "1.5".
func ParseLength(s string) (Length, error) {
	toks, err := lex(s)
	if err != nil {
		return Length{}, fmt.Errorf("unable to parse length %q: %w", s, err)
	}
	if len(toks) != 1 {
		return Length{}, fmt.Errorf("not a single length: %q", s)
	}
	l, ok := toks[0].length()
	if !ok {
		return Length{}, fmt.Errorf("not a length: %q", s)
	}
	return l, nil
}

type token struct {
	tt   css.TokenType
	data string
}

// length interprets number and dimension tokens.
func (t token) length() (Length, bool) {
	switch t.tt {
	case css.NumberToken:
		v, err := strconv.ParseFloat(t.data, 64)
		if err != nil {
			return Length{}, false
		}
		return Length{Value: v}, true
	case css.DimensionToken:
		v, unit, ok := stylesheet.SplitDimension(t.data)
		if !ok {
			return Length{}, false
		}
		return Length{Value: v, Unit: unit}, true
	}
	return Length{}, false
}

// lex splits s into CSS tokens dropping whitespace and comments.
func lex(s string) ([]token, error) {
	l := css.NewLexer(parse.NewInputString(s))
	var out []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, err
			}
			return out, nil
		case css.WhitespaceToken, css.CommentToken:
			continue
		}
		out = append(out, token{tt: tt, data: string(data)})
	}
}

