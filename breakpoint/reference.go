package breakpoint

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Direction qualifies the range a reference covers.
type Direction int

const (
	Up   Direction = iota // threshold and wider
	Down                  // narrower than the next threshold
	Only                  // range of a single named breakpoint
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Only:
		return "only"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses direction keyword.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "only":
		return Only, nil
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// RefKind tells what a reference points to.
type RefKind int

const (
	RefName RefKind = iota
	RefLength
	RefOrientation
)

const (
	Landscape = "landscape"
	Portrait  = "portrait"
)

// Reference is a breakpoint query: named breakpoint, literal length or
// orientation keyword with direction.
type Reference struct {
	Kind   RefKind
	Name   string // breakpoint name or orientation keyword
	Length Length
	Dir    Direction
}

// Named references registered breakpoint.
func Named(name string) Reference {
	return Reference{Kind: RefName, Name: name}
}

// At references literal length.
func At(l Length) Reference {
	return Reference{Kind: RefLength, Length: l}
}

// Orientation references orientation keyword.
func Orientation(keyword string) Reference {
	return Reference{Kind: RefOrientation, Name: keyword}
}

func (r Reference) Up() Reference {
	r.Dir = Up
	return r
}

func (r Reference) Down() Reference {
	r.Dir = Down
	return r
}

func (r Reference) Only() Reference {
	r.Dir = Only
	return r
}

// ScopeName is the value a reference puts into Scope while it is active.
func (r Reference) ScopeName() string {
	if r.Kind == RefLength {
		return r.Length.String()
	}
	return r.Name
}

func (r Reference) String() string {
	s := r.ScopeName()
	if r.Kind == RefOrientation || r.Dir == Up {
		return s
	}
	return s + " " + r.Dir.String()
}

// ParseReference parses textual references such as "medium", "medium down",
// "640px up", "40em only" and "landscape".
func ParseReference(s string) (Reference, error) {
	toks, err := lex(s)
	if err != nil {
		return Reference{}, fmt.Errorf("unable to parse breakpoint reference %q: %w", s, err)
	}
	if len(toks) == 0 || len(toks) > 2 {
		return Reference{}, fmt.Errorf("malformed breakpoint reference %q", s)
	}

	var ref Reference
	switch first := toks[0]; first.tt {
	case css.IdentToken:
		name := first.data
		if kw := strings.ToLower(name); kw == Landscape || kw == Portrait {
			if len(toks) > 1 {
				return Reference{}, fmt.Errorf("orientation %q does not take direction", s)
			}
			return Orientation(kw), nil
		}
		ref = Named(name)
	case css.NumberToken, css.DimensionToken:
		l, ok := first.length()
		if !ok {
			return Reference{}, fmt.Errorf("malformed length in breakpoint reference %q", s)
		}
		ref = At(l)
	default:
		return Reference{}, fmt.Errorf("malformed breakpoint reference %q", s)
	}

	if len(toks) == 2 {
		if toks[1].tt != css.IdentToken {
			return Reference{}, fmt.Errorf("malformed direction in breakpoint reference %q", s)
		}
		if ref.Dir, err = ParseDirection(toks[1].data); err != nil {
			return Reference{}, fmt.Errorf("malformed breakpoint reference %q: %w", s, err)
		}
	}
	return ref, nil
}
