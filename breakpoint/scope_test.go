package breakpoint_test

import (
	"errors"
	"slices"
	"testing"

	"gridcss/breakpoint"
)

func TestScope_Nesting(t *testing.T) {
	s := breakpoint.NewScope()
	if s.Current() != "" || s.Depth() != 0 {
		t.Fatal("new scope must be empty")
	}

	leaveOuter := s.Enter("medium")
	leaveInner := s.Enter("large")
	if s.Current() != "large" || s.Depth() != 2 {
		t.Errorf("Current() = %q, depth %d", s.Current(), s.Depth())
	}
	leaveInner()
	if s.Current() != "medium" {
		t.Errorf("Current() after inner leave = %q, want medium", s.Current())
	}
	leaveOuter()
	if s.Current() != "" {
		t.Errorf("Current() after outer leave = %q", s.Current())
	}
}

func TestScope_LeaveOutOfOrder(t *testing.T) {
	s := breakpoint.NewScope()
	leaveMedium := s.Enter("medium")
	leaveLarge := s.Enter("large")

	leaveMedium()
	if s.Current() != "" || s.Depth() != 0 {
		t.Fatalf("outer leave must drop nested names, got %q depth %d", s.Current(), s.Depth())
	}
	leaveLarge()
	if s.Current() != "" || s.Depth() != 0 {
		t.Errorf("late inner leave restored %q, depth %d", s.Current(), s.Depth())
	}

	// scope stays usable
	leave := s.Enter("small")
	if s.Current() != "small" || s.Depth() != 1 {
		t.Errorf("Current() = %q, depth %d after re-entering", s.Current(), s.Depth())
	}
	leave()
}

func TestScope_AutoWrap(t *testing.T) {
	s := breakpoint.NewScope()
	if !s.AutoWrap() {
		t.Fatal("auto wrap must be on by default")
	}
	restoreOuter := s.SetAutoWrap(false)
	restoreInner := s.SetAutoWrap(true)
	if !s.AutoWrap() {
		t.Error("inner toggle not applied")
	}
	restoreInner()
	if s.AutoWrap() {
		t.Error("inner restore must bring back disabled state")
	}
	restoreOuter()
	if !s.AutoWrap() {
		t.Error("outer restore must enable wrapping")
	}
}

func TestResolver_Each(t *testing.T) {
	r := newResolver(t, breakpoint.WithClasses([]string{"small", "medium", "large"}))
	s := breakpoint.NewScope()

	var (
		names   []string
		queries []string
	)
	_, err := r.Each(s, breakpoint.EachOptions{}, func(b breakpoint.Block) error {
		if s.Current() != b.Name {
			t.Errorf("scope current = %q inside block %q", s.Current(), b.Name)
		}
		names = append(names, b.Name)
		queries = append(queries, b.Query)
		if b.Wrapped != (b.Query != "") {
			t.Errorf("block %q wrapped = %v with query %q", b.Name, b.Wrapped, b.Query)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}

	if !slices.Equal(names, []string{"small", "medium", "large"}) {
		t.Errorf("visited %v", names)
	}
	wantQueries := []string{"", "screen and (min-width: 40em)", "screen and (min-width: 64em)"}
	if !slices.Equal(queries, wantQueries) {
		t.Errorf("queries %q, want %q", queries, wantQueries)
	}
	if s.Depth() != 0 {
		t.Errorf("scope not restored, depth %d", s.Depth())
	}
}

func TestResolver_EachOptions(t *testing.T) {
	r := newResolver(t)

	var names []string
	collect := func(b breakpoint.Block) error {
		names = append(names, b.Name)
		return nil
	}

	if _, err := r.Each(nil, breakpoint.EachOptions{SkipZero: true}, collect); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"medium", "large", "xlarge", "xxlarge"}) {
		t.Errorf("SkipZero visited %v", names)
	}

	names = nil
	if _, err := r.Each(nil, breakpoint.EachOptions{Names: []string{"large", "medium"}}, collect); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"large", "medium"}) {
		t.Errorf("Names visited %v", names)
	}
}

func TestResolver_EachNoWrap(t *testing.T) {
	r := newResolver(t)
	s := breakpoint.NewScope()
	restore := s.SetAutoWrap(false)
	defer restore()

	_, err := r.Each(s, breakpoint.EachOptions{}, func(b breakpoint.Block) error {
		if b.Wrapped || b.Query != "" {
			t.Errorf("block %q wrapped with auto wrap off", b.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestResolver_EachStopsOnError(t *testing.T) {
	r := newResolver(t)
	s := breakpoint.NewScope()
	leave := s.Enter("outer")
	defer leave()

	boom := errors.New("boom")
	var visited int
	_, err := r.Each(s, breakpoint.EachOptions{}, func(b breakpoint.Block) error {
		visited++
		if b.Name == "medium" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Each() error = %v, want boom", err)
	}
	if visited != 2 {
		t.Errorf("visited %d blocks, want 2", visited)
	}
	if s.Current() != "outer" {
		t.Errorf("scope not restored after error, current %q", s.Current())
	}
}

func TestResolver_Breakpoint(t *testing.T) {
	r := newResolver(t)
	s := breakpoint.NewScope()

	refs := []breakpoint.Reference{
		breakpoint.Named("medium").Only(),
		breakpoint.At(breakpoint.Px(800)),
		breakpoint.Named("tablet"),
	}
	var got []breakpoint.Block
	diags, err := r.Breakpoint(s, refs, func(b breakpoint.Block) error {
		got = append(got, b)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 1 || diags[0].Rule != breakpoint.RuleUnknownBreakpoint {
		t.Errorf("unexpected diagnostics %v", diags)
	}
	if len(got) != 3 {
		t.Fatalf("got %d blocks", len(got))
	}
	if got[0].Name != "medium" || got[0].Query != "screen and (min-width: 40em) and (max-width: 63.99875em)" {
		t.Errorf("block 0 = %+v", got[0])
	}
	if got[1].Name != "800px" || got[1].Query != "screen and (min-width: 50em)" {
		t.Errorf("block 1 = %+v", got[1])
	}
	if got[2].Wrapped {
		t.Errorf("unknown breakpoint must not be wrapped: %+v", got[2])
	}
}
