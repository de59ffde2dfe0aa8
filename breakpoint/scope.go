package breakpoint

// Scope carries "current breakpoint" through nested iterations. It is a
// single threaded context object: every Enter must be paired with the
// returned leave func, innermost first.
type Scope struct {
	stack    []string
	noWrap   bool
	wrapSave []bool
}

func NewScope() *Scope {
	return &Scope{}
}

// Current returns name of the innermost active breakpoint or empty string.
func (s *Scope) Current() string {
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1]
}

// Depth returns number of active nested breakpoints.
func (s *Scope) Depth() int {
	return len(s.stack)
}

// Enter makes name current until returned func is called.
func (s *Scope) Enter(name string) (leave func()) {
	s.stack = append(s.stack, name)
	depth := len(s.stack)
	return func() {
		// pops whatever nested calls left behind as well, never grows back
		// after an outer leave
		s.stack = s.stack[:min(depth-1, len(s.stack))]
	}
}

// AutoWrap reports if iteration wraps blocks into media queries.
func (s *Scope) AutoWrap() bool {
	return !s.noWrap
}

// SetAutoWrap switches automatic media query wrapping until returned func is
// called. Callers turn it off when they group output of several breakpoints
// themselves.
func (s *Scope) SetAutoWrap(on bool) (restore func()) {
	s.wrapSave = append(s.wrapSave, s.noWrap)
	depth := len(s.wrapSave)
	s.noWrap = !on
	return func() {
		s.noWrap = s.wrapSave[depth-1]
		s.wrapSave = s.wrapSave[:depth-1]
	}
}

// Block describes single iteration step.
type Block struct {
	Name    string    // value put into Scope
	Ref     Reference // reference the block was produced for
	Query   string    // media query, empty when not wrapped
	Wrapped bool
}

// EachOptions selects breakpoints for Each.
type EachOptions struct {
	Names    []string // defaults to resolver classes
	SkipZero bool     // do not visit zero breakpoint
}

// Each calls fn once per breakpoint with scope set to breakpoint name.
// Iteration stops at the first error returned by fn.
func (r *Resolver) Each(scope *Scope, opts EachOptions, fn func(Block) error) (Diagnostics, error) {
	names := opts.Names
	if len(names) == 0 {
		names = r.classes
	}
	zero := r.std.Zero().Name
	refs := make([]Reference, 0, len(names))
	for _, name := range names {
		if opts.SkipZero && name == zero {
			continue
		}
		refs = append(refs, Named(name))
	}
	return r.Breakpoint(scope, refs, fn)
}

// Breakpoint calls fn once per reference, wrapping every block into its
// media query unless scope auto wrapping is off. Blocks with empty query
// (zero breakpoint going up for example) are never wrapped.
func (r *Resolver) Breakpoint(scope *Scope, refs []Reference, fn func(Block) error) (Diagnostics, error) {
	if scope == nil {
		scope = NewScope()
	}
	var all Diagnostics
	for _, ref := range refs {
		b := Block{Name: ref.ScopeName(), Ref: ref}
		if scope.AutoWrap() {
			q, diags := r.Media(ref)
			all = append(all, diags...)
			b.Query, b.Wrapped = q, q != ""
		}
		if err := run(scope, b, fn); err != nil {
			return all, err
		}
	}
	return all, nil
}

func run(scope *Scope, b Block, fn func(Block) error) error {
	leave := scope.Enter(b.Name)
	defer leave()
	return fn(b)
}
